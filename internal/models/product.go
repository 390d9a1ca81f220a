package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is the canonical record for one ERP product, keyed by its
// natural product code. Shopify ids are bound once and never change.
type Product struct {
	ID                  string    `json:"id" gorm:"type:uuid;primary_key"`
	ProductCode         string    `json:"product_code" gorm:"uniqueIndex;not null"`
	ShopifyProductID    *string   `json:"shopify_product_id" gorm:"index"`
	ShopifyCollectionID *string   `json:"shopify_collection_id" gorm:"index"`
	Published           bool      `json:"published" gorm:"default:false"`
	Title               string    `json:"title"`
	BodyHTML            string    `json:"body_html"`
	Vendor              string    `json:"vendor"`
	ProductType         string    `json:"product_type"`
	Variants            string    `json:"variants" gorm:"type:text"`
	Image               *string   `json:"image"`
	CollectionTitle     string    `json:"collection_title"`
	CollectionDesc      string    `json:"collection_desc"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Variant is one sellable option of a product. The set is stored as a
// JSON array in the Variants column.
type Variant struct {
	Option1           string `json:"option1"`
	Price             string `json:"price"`
	SKU               string `json:"sku"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

// DecodeVariants unmarshals the stored variant set. A missing or
// malformed column yields an empty slice, never an error downstream.
func (p *Product) DecodeVariants() []Variant {
	if p.Variants == "" {
		return nil
	}
	var variants []Variant
	if err := json.Unmarshal([]byte(p.Variants), &variants); err != nil {
		return nil
	}
	return variants
}

func EncodeVariants(variants []Variant) string {
	data, err := json.Marshal(variants)
	if err != nil {
		return "[]"
	}
	return string(data)
}

type Location struct {
	ID                string    `json:"id" gorm:"type:uuid;primary_key"`
	ShopifyLocationID string    `json:"shopify_location_id" gorm:"uniqueIndex;not null"`
	Name              string    `json:"name"`
	Address           string    `json:"address"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type Publication struct {
	ID                       string    `json:"id" gorm:"type:uuid;primary_key"`
	ShopifyPublicationID     string    `json:"shopify_publication_id" gorm:"uniqueIndex;not null"`
	Name                     string    `json:"name"`
	SupportsFuturePublishing bool      `json:"supports_future_publishing"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

func (p *Publication) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
