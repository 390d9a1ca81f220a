package store

import (
	"errors"
	"fmt"
	"time"

	"catsync/internal/models"

	"gorm.io/gorm"
)

// ProductStore is the persistence collaborator for canonical records.
type ProductStore interface {
	// Find returns the record for a product code, or nil when absent.
	Find(productCode string) (*models.Product, error)
	// Upsert writes the mapped fields for a product code, creating the
	// record if needed. Shopify bindings on an existing record are kept.
	Upsert(p *models.Product) (*models.Product, error)
	// Save persists the record as-is and bumps its updated_at.
	Save(p *models.Product) error
	// SelectDue returns records with no Shopify product id, plus bound
	// records not touched since now minus staleWindow.
	SelectDue(now time.Time, staleWindow time.Duration) ([]models.Product, error)
}

// RefDataStore holds the one-time Shopify reference data.
type RefDataStore interface {
	UpsertLocation(loc *models.Location) error
	UpsertPublication(pub *models.Publication) error
	ListLocations() ([]models.Location, error)
	ListPublications(name string) ([]models.Publication, error)
}

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Find(productCode string) (*models.Product, error) {
	var product models.Product
	err := s.db.First(&product, "product_code = ?", productCode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product %s: %w", productCode, err)
	}
	return &product, nil
}

func (s *Store) Upsert(p *models.Product) (*models.Product, error) {
	existing, err := s.Find(p.ProductCode)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		if err := s.db.Create(p).Error; err != nil {
			return nil, fmt.Errorf("failed to create product %s: %w", p.ProductCode, err)
		}
		return p, nil
	}

	existing.Title = p.Title
	existing.BodyHTML = p.BodyHTML
	existing.Vendor = p.Vendor
	existing.ProductType = p.ProductType
	existing.Variants = p.Variants
	existing.Image = p.Image
	existing.CollectionTitle = p.CollectionTitle
	existing.CollectionDesc = p.CollectionDesc
	if err := s.db.Save(existing).Error; err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", p.ProductCode, err)
	}
	return existing, nil
}

func (s *Store) Save(p *models.Product) error {
	p.UpdatedAt = time.Now()
	if err := s.db.Save(p).Error; err != nil {
		return fmt.Errorf("failed to save product %s: %w", p.ProductCode, err)
	}
	return nil
}

func (s *Store) SelectDue(now time.Time, staleWindow time.Duration) ([]models.Product, error) {
	var products []models.Product
	threshold := now.Add(-staleWindow)
	err := s.db.
		Where("shopify_product_id IS NULL OR updated_at < ?", threshold).
		Order("product_code").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select due products: %w", err)
	}
	return products, nil
}

func (s *Store) UpsertLocation(loc *models.Location) error {
	var existing models.Location
	err := s.db.First(&existing, "shopify_location_id = ?", loc.ShopifyLocationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.Create(loc).Error; err != nil {
			return fmt.Errorf("failed to create location: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find location: %w", err)
	}
	existing.Name = loc.Name
	existing.Address = loc.Address
	if err := s.db.Save(&existing).Error; err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}
	return nil
}

func (s *Store) UpsertPublication(pub *models.Publication) error {
	var existing models.Publication
	err := s.db.First(&existing, "shopify_publication_id = ?", pub.ShopifyPublicationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.Create(pub).Error; err != nil {
			return fmt.Errorf("failed to create publication: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find publication: %w", err)
	}
	existing.Name = pub.Name
	existing.SupportsFuturePublishing = pub.SupportsFuturePublishing
	if err := s.db.Save(&existing).Error; err != nil {
		return fmt.Errorf("failed to update publication: %w", err)
	}
	return nil
}

func (s *Store) ListLocations() ([]models.Location, error) {
	var locations []models.Location
	if err := s.db.Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

func (s *Store) ListPublications(name string) ([]models.Publication, error) {
	var publications []models.Publication
	if err := s.db.Where("name = ?", name).Find(&publications).Error; err != nil {
		return nil, fmt.Errorf("failed to list publications: %w", err)
	}
	return publications, nil
}
