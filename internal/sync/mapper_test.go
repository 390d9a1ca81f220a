package sync

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"catsync/internal/logger"
	"catsync/internal/models"
	"catsync/internal/services/rivile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	pages        map[int]*rivile.ProductPage
	pageErrs     map[int]error
	descriptions map[string]string
	types        map[string]string
	brands       map[string]string
	collections  map[string]*rivile.CollectionDetails
	inventory    map[string]int // "sku/variantCode"

	descriptionErr error
	inventoryErr   error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pages:        map[int]*rivile.ProductPage{},
		pageErrs:     map[int]error{},
		descriptions: map[string]string{},
		types:        map[string]string{},
		brands:       map[string]string{},
		collections:  map[string]*rivile.CollectionDetails{},
		inventory:    map[string]int{},
	}
}

func (f *fakeSource) GetProducts(pageNumber int) (*rivile.ProductPage, error) {
	if err := f.pageErrs[pageNumber]; err != nil {
		return nil, err
	}
	if page, ok := f.pages[pageNumber]; ok {
		return page, nil
	}
	return &rivile.ProductPage{}, nil
}

func (f *fakeSource) GetDescription(code string) (string, error) {
	if f.descriptionErr != nil {
		return "", f.descriptionErr
	}
	return f.descriptions[code], nil
}

func (f *fakeSource) GetProductType(groupCode string) (string, error) {
	return f.types[groupCode], nil
}

func (f *fakeSource) GetBrand(brandCode string) (string, error) {
	return f.brands[brandCode], nil
}

func (f *fakeSource) GetCollection(collectionCode string) (*rivile.CollectionDetails, error) {
	if details, ok := f.collections[collectionCode]; ok {
		return details, nil
	}
	return &rivile.CollectionDetails{}, nil
}

func (f *fakeSource) GetInventoryQuantity(sku, variantCode string) (int, error) {
	if f.inventoryErr != nil {
		return 0, f.inventoryErr
	}
	return f.inventory[sku+"/"+variantCode], nil
}

func rawEntry(fields string) json.RawMessage {
	return json.RawMessage(fields)
}

func testRawProduct() *rivile.RawProduct {
	return &rivile.RawProduct{
		Code:           "P1",
		Title:          "Shirt",
		GroupCode:      "G1",
		CollectionCode: "C1",
		BrandCode:      "B1",
		Image:          `images\\products\shirt.jpg`,
		Variants: rivile.EntryList{
			rawEntry(`{"I33_KODAS_US": "S", "I33_KAINA": "10.00", "I33_KODAS_PS": "SKU-S", "I33_KODAS_IS": "1"}`),
		},
		Links: rivile.EntryList{rawEntry(`{"N37_KODAS": "L1"}`)},
	}
}

func populatedSource() *fakeSource {
	source := newFakeSource()
	source.descriptions["P1"] = "<p>desc</p>"
	source.types["G1"] = "Suits"
	source.brands["B1"] = "Acme"
	source.collections["C1"] = &rivile.CollectionDetails{Title: "Summer", Description: "Summer things"}
	source.inventory["SKU-S/1"] = 5
	return source
}

func TestMapComposesLookups(t *testing.T) {
	mapper := NewMapper(populatedSource(), logger.New("error"))

	product, err := mapper.Map(testRawProduct())
	require.NoError(t, err)

	assert.Equal(t, "P1", product.ProductCode)
	assert.Equal(t, "Shirt", product.Title)
	assert.Equal(t, "<p>desc</p>", product.BodyHTML)
	assert.Equal(t, "Acme", product.Vendor)
	assert.Equal(t, "Suits", product.ProductType)
	assert.Equal(t, "Summer", product.CollectionTitle)
	assert.Equal(t, "Summer things", product.CollectionDesc)

	require.NotNil(t, product.Image)
	assert.Equal(t, "images/products/shirt.jpg", *product.Image)

	variants := product.DecodeVariants()
	require.Len(t, variants, 1)
	assert.Equal(t, models.Variant{Option1: "S", Price: "10.00", SKU: "SKU-S", InventoryQuantity: 5}, variants[0])
}

func TestMapIneligibleFields(t *testing.T) {
	mapper := NewMapper(populatedSource(), logger.New("error"))

	tests := []struct {
		name   string
		mutate func(*rivile.RawProduct)
	}{
		{"missing description code", func(p *rivile.RawProduct) { p.Code = "" }},
		{"missing title", func(p *rivile.RawProduct) { p.Title = "" }},
		{"missing group code", func(p *rivile.RawProduct) { p.GroupCode = "" }},
		{"missing brand code", func(p *rivile.RawProduct) { p.BrandCode = "" }},
		{"no variants", func(p *rivile.RawProduct) { p.Variants = nil }},
		{"no links", func(p *rivile.RawProduct) { p.Links = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := testRawProduct()
			tt.mutate(raw)

			product, err := mapper.Map(raw)
			assert.Nil(t, product)
			assert.ErrorIs(t, err, ErrIneligible)
		})
	}
}

func TestMapVariantDefaults(t *testing.T) {
	source := populatedSource()
	mapper := NewMapper(source, logger.New("error"))

	raw := testRawProduct()
	raw.Variants = rivile.EntryList{rawEntry(`{"I33_KODAS_PS": "SKU-X"}`)}

	product, err := mapper.Map(raw)
	require.NoError(t, err)

	variants := product.DecodeVariants()
	require.Len(t, variants, 1)
	assert.Equal(t, "Unknown", variants[0].Option1)
	assert.Equal(t, "0.00", variants[0].Price)
	assert.Equal(t, 0, variants[0].InventoryQuantity)
}

func TestMapSkipsMalformedVariantEntries(t *testing.T) {
	mapper := NewMapper(populatedSource(), logger.New("error"))

	raw := testRawProduct()
	raw.Variants = append(rivile.EntryList{rawEntry(`"not a record"`)}, raw.Variants...)

	product, err := mapper.Map(raw)
	require.NoError(t, err)
	assert.Len(t, product.DecodeVariants(), 1)
}

func TestMapLookupFailuresDegrade(t *testing.T) {
	source := populatedSource()
	source.descriptionErr = fmt.Errorf("rivile down: %w", errors.New("timeout"))
	source.inventoryErr = errors.New("timeout")
	mapper := NewMapper(source, logger.New("error"))

	product, err := mapper.Map(testRawProduct())
	require.NoError(t, err)

	// the failed lookups default; independent lookups still resolve
	assert.Equal(t, "", product.BodyHTML)
	assert.Equal(t, "Acme", product.Vendor)

	variants := product.DecodeVariants()
	require.Len(t, variants, 1)
	assert.Equal(t, 0, variants[0].InventoryQuantity)
}
