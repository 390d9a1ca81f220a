package sync

import (
	"encoding/json"
	"errors"
	"strings"

	"catsync/internal/logger"
	"catsync/internal/models"
	"catsync/internal/services/rivile"
)

// SourceAPI is the slice of the Rivile client the engine consumes.
type SourceAPI interface {
	GetProducts(pageNumber int) (*rivile.ProductPage, error)
	GetDescription(code string) (string, error)
	GetProductType(groupCode string) (string, error)
	GetBrand(brandCode string) (string, error)
	GetCollection(collectionCode string) (*rivile.CollectionDetails, error)
	GetInventoryQuantity(sku, variantCode string) (int, error)
}

// ErrIneligible marks a raw record missing required fields. It is a
// skip signal, not a failure; callers must not persist the record.
var ErrIneligible = errors.New("product record missing required fields")

// Mapper composes the normalized feed record and four auxiliary Rivile
// lookups into one canonical product.
type Mapper struct {
	source SourceAPI
	logger *logger.Logger
}

func NewMapper(source SourceAPI, logger *logger.Logger) *Mapper {
	return &Mapper{
		source: source,
		logger: logger,
	}
}

// Map builds a canonical product from a raw feed record. Ineligible
// records return ErrIneligible. Individual lookup failures degrade to
// empty values; they never abort the unrelated lookups.
func (m *Mapper) Map(raw *rivile.RawProduct) (*models.Product, error) {
	if !raw.Valid() {
		return nil, ErrIneligible
	}

	description, err := m.source.GetDescription(raw.Code)
	if err != nil {
		m.logger.Warn("Failed to fetch description for %s: %v", raw.Code, err)
	}

	productType, err := m.source.GetProductType(raw.GroupCode)
	if err != nil {
		m.logger.Warn("Failed to fetch product type for %s: %v", raw.Code, err)
	}

	brand, err := m.source.GetBrand(raw.BrandCode)
	if err != nil {
		m.logger.Warn("Failed to fetch brand for %s: %v", raw.Code, err)
	}

	collection := &rivile.CollectionDetails{}
	if raw.CollectionCode != "" {
		if details, err := m.source.GetCollection(raw.CollectionCode); err != nil {
			m.logger.Warn("Failed to fetch collection for %s: %v", raw.Code, err)
		} else {
			collection = details
		}
	}

	product := &models.Product{
		ProductCode:     raw.Code,
		Title:           raw.Title,
		BodyHTML:        description,
		Vendor:          brand,
		ProductType:     productType,
		Variants:        models.EncodeVariants(m.buildVariants(raw)),
		CollectionTitle: collection.Title,
		CollectionDesc:  collection.Description,
	}

	if raw.Image != "" {
		image := normalizeImagePath(raw.Image)
		product.Image = &image
	}

	return product, nil
}

func (m *Mapper) buildVariants(raw *rivile.RawProduct) []models.Variant {
	variants := make([]models.Variant, 0, len(raw.Variants))
	for _, entry := range raw.Variants {
		var rawVariant rivile.RawVariant
		if err := json.Unmarshal(entry, &rawVariant); err != nil {
			m.logger.Warn("Unexpected variant format for product %s: %s", raw.Code, string(entry))
			continue
		}

		quantity, err := m.source.GetInventoryQuantity(string(rawVariant.SKU), string(rawVariant.VariantCode))
		if err != nil {
			m.logger.Warn("Failed to fetch inventory for %s/%s: %v", raw.Code, rawVariant.SKU, err)
			quantity = 0
		}

		option := string(rawVariant.Option)
		if option == "" {
			option = "Unknown"
		}
		price := string(rawVariant.Price)
		if price == "" {
			price = "0.00"
		}

		variants = append(variants, models.Variant{
			Option1:           option,
			Price:             price,
			SKU:               string(rawVariant.SKU),
			InventoryQuantity: quantity,
		})
	}
	return variants
}

// normalizeImagePath rewrites Windows-style image paths to
// forward-slash form. Doubled backslashes collapse to one separator.
func normalizeImagePath(path string) string {
	path = strings.ReplaceAll(path, `\\`, "/")
	return strings.ReplaceAll(path, `\`, "/")
}
