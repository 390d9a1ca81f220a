package sync

import (
	"testing"

	"catsync/internal/models"

	"github.com/stretchr/testify/assert"
)

func canonicalProduct() *models.Product {
	return &models.Product{
		ProductCode: "P1",
		Title:       "Shirt",
		BodyHTML:    "<p>desc</p>",
		Vendor:      "Acme",
		ProductType: "Suits",
		Variants: models.EncodeVariants([]models.Variant{
			{Option1: "S", Price: "10.00", SKU: "SKU-S", InventoryQuantity: 3},
		}),
		CollectionTitle: "Summer",
	}
}

func TestDecideCreate(t *testing.T) {
	var detector Detector
	assert.Equal(t, DecisionCreate, detector.Decide(nil, canonicalProduct()))
}

func TestDecideSkipOnIdenticalFields(t *testing.T) {
	var detector Detector
	assert.Equal(t, DecisionSkip, detector.Decide(canonicalProduct(), canonicalProduct()))
}

func TestDecideUpdateOnSingleFieldChange(t *testing.T) {
	var detector Detector

	tests := []struct {
		name   string
		mutate func(*models.Product)
	}{
		{"title", func(p *models.Product) { p.Title = "Jacket" }},
		{"description", func(p *models.Product) { p.BodyHTML = "<p>other</p>" }},
		{"vendor", func(p *models.Product) { p.Vendor = "Other" }},
		{"product type", func(p *models.Product) { p.ProductType = "Shoes" }},
		{"collection title", func(p *models.Product) { p.CollectionTitle = "Winter" }},
		{"variant quantity", func(p *models.Product) {
			p.Variants = models.EncodeVariants([]models.Variant{
				{Option1: "S", Price: "10.00", SKU: "SKU-S", InventoryQuantity: 4},
			})
		}},
		{"variant added", func(p *models.Product) {
			p.Variants = models.EncodeVariants([]models.Variant{
				{Option1: "S", Price: "10.00", SKU: "SKU-S", InventoryQuantity: 3},
				{Option1: "M", Price: "10.00", SKU: "SKU-M", InventoryQuantity: 1},
			})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			incoming := canonicalProduct()
			tt.mutate(incoming)
			assert.Equal(t, DecisionUpdate, detector.Decide(canonicalProduct(), incoming))
		})
	}
}

func TestEqualIgnoresBindingFields(t *testing.T) {
	var detector Detector

	existing := canonicalProduct()
	id := "gid://shopify/Product/1"
	existing.ShopifyProductID = &id
	existing.Published = true

	assert.True(t, detector.Equal(existing, canonicalProduct()))
}
