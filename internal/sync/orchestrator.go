package sync

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"catsync/internal/events"
	"catsync/internal/logger"
	"catsync/internal/models"
	"catsync/internal/services/rivile"
	"catsync/internal/services/shopify"
	"catsync/internal/store"
)

// TargetAPI is the slice of the Shopify client the engine consumes.
type TargetAPI interface {
	CreateProduct(data shopify.ProductData) (*shopify.CreatedProduct, error)
	CreateVariants(productID string, variants []models.Variant) error
	DeleteVariant(variantID string) error
	GetOrCreateCollection(title, description string) (string, error)
	AddToCollection(collectionID, productID string) error
	PublishProduct(productID string) error
	UpdateProduct(productID string, data shopify.ProductData) error
	GetLocations() ([]shopify.RemoteLocation, error)
	GetPublications() ([]shopify.RemotePublication, error)
}

// Store joins the canonical record store with the reference tables.
type Store interface {
	store.ProductStore
	store.RefDataStore
}

// FetchSummary reports one ingestion pass over the Rivile feed.
type FetchSummary struct {
	Pages   int `json:"pages"`
	Fetched int `json:"fetched"`
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// SyncSummary reports one push pass against Shopify.
type SyncSummary struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Orchestrator drives the two passes of the engine: ingesting the
// paginated feed into the canonical store, and pushing due records to
// Shopify. Both passes run one product at a time, end to end; the
// canonical store is the only hand-off between them.
type Orchestrator struct {
	source      SourceAPI
	mapper      *Mapper
	detector    Detector
	target      TargetAPI
	store       Store
	events      events.Publisher
	logger      *logger.Logger
	staleWindow time.Duration
}

func NewOrchestrator(source SourceAPI, target TargetAPI, st Store, publisher events.Publisher, logger *logger.Logger, staleWindow time.Duration) *Orchestrator {
	return &Orchestrator{
		source:      source,
		mapper:      NewMapper(source, logger),
		target:      target,
		store:       st,
		events:      publisher,
		logger:      logger,
		staleWindow: staleWindow,
	}
}

// RunFetchOnce walks the product feed from page 1 until an empty page,
// mapping and upserting eligible records. A page fetch failure aborts
// the remaining pages; the pass holds no cursor state, so the next run
// restarts from page 1 and restores coverage.
func (o *Orchestrator) RunFetchOnce() (*FetchSummary, error) {
	o.logger.Info("Fetching products from Rivile API...")
	summary := &FetchSummary{}

	for page := 1; ; page++ {
		productPage, err := o.source.GetProducts(page)
		if err != nil {
			o.logger.Error("Failed to fetch page %d: %v", page, err)
			return summary, fmt.Errorf("fetch pass aborted at page %d: %w", page, err)
		}
		if len(productPage.Products) == 0 {
			break
		}

		summary.Pages++
		for _, entry := range productPage.Products {
			summary.Fetched++
			var raw rivile.RawProduct
			if err := json.Unmarshal(entry, &raw); err != nil {
				o.logger.Warn("Unexpected product record on page %d: %v", page, err)
				summary.Failed++
				continue
			}
			o.ingest(&raw, summary)
		}
	}

	o.logger.Info("Products fetch completed. Total products fetched: %d, saved: %d, skipped: %d, failed: %d",
		summary.Fetched, summary.Saved, summary.Skipped, summary.Failed)
	o.events.Publish(events.Event{
		Type: "fetch.completed",
		Data: map[string]interface{}{
			"fetched": summary.Fetched,
			"saved":   summary.Saved,
			"skipped": summary.Skipped,
			"failed":  summary.Failed,
		},
	})
	return summary, nil
}

func (o *Orchestrator) ingest(raw *rivile.RawProduct, summary *FetchSummary) {
	mapped, err := o.mapper.Map(raw)
	if errors.Is(err, ErrIneligible) {
		o.logger.Info("Skipping product due to missing critical fields: %s", raw.Code)
		summary.Skipped++
		return
	}
	if err != nil {
		o.logger.Error("Failed to map product %s: %v", raw.Code, err)
		summary.Failed++
		return
	}

	existing, err := o.store.Find(mapped.ProductCode)
	if err != nil {
		o.logger.Error("Failed to load product %s: %v", mapped.ProductCode, err)
		summary.Failed++
		return
	}

	if o.detector.Decide(existing, mapped) == DecisionSkip {
		o.logger.Debug("Product not updated as no changes detected: %s", mapped.ProductCode)
		summary.Skipped++
		return
	}

	if _, err := o.store.Upsert(mapped); err != nil {
		o.logger.Error("Failed to save product %s: %v", mapped.ProductCode, err)
		summary.Failed++
		return
	}
	o.logger.Info("Product saved: %s", mapped.ProductCode)
	summary.Saved++
}

// RunSyncOnce pushes every due record to Shopify: unbound records take
// the create path, bound ones resume any incomplete create step or get
// a plain update. Per-product failures are logged and counted; they
// never abort the batch.
func (o *Orchestrator) RunSyncOnce() (*SyncSummary, error) {
	o.logger.Info("Starting product sync to Shopify...")
	summary := &SyncSummary{}

	due, err := o.store.SelectDue(time.Now(), o.staleWindow)
	if err != nil {
		return summary, fmt.Errorf("failed to select due products: %w", err)
	}

	for i := range due {
		product := &due[i]
		summary.Processed++

		outcome, err := o.syncProduct(product)
		if err != nil {
			o.logger.Error("Error syncing product %s: %v", product.ProductCode, err)
			summary.Failed++
			o.events.Publish(events.Event{Type: "product.sync_failed", ProductCode: product.ProductCode})
			continue
		}

		switch outcome {
		case outcomeCreated:
			summary.Created++
			o.events.Publish(events.Event{Type: "product.created", ProductCode: product.ProductCode})
		case outcomeUpdated:
			summary.Updated++
			o.events.Publish(events.Event{Type: "product.updated", ProductCode: product.ProductCode})
		case outcomeSkipped:
			summary.Skipped++
		}
	}

	o.logger.Info("Product sync to Shopify completed: %d processed, %d created, %d updated, %d skipped, %d failed",
		summary.Processed, summary.Created, summary.Updated, summary.Skipped, summary.Failed)
	o.events.Publish(events.Event{
		Type: "sync.completed",
		Data: map[string]interface{}{
			"processed": summary.Processed,
			"created":   summary.Created,
			"updated":   summary.Updated,
			"skipped":   summary.Skipped,
			"failed":    summary.Failed,
		},
	})
	return summary, nil
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeCreated
	outcomeUpdated
)

// syncProduct runs the per-product state machine. Each completed step
// is persisted immediately, so a later pass resumes at the first
// incomplete step instead of re-deriving state.
func (o *Orchestrator) syncProduct(p *models.Product) (outcome, error) {
	created := false

	if p.ShopifyProductID == nil {
		variants := p.DecodeVariants()
		if len(variants) == 0 {
			o.logger.Warn("Variants are not in the expected format, skipping: %s", p.ProductCode)
			return outcomeSkipped, nil
		}

		createdProduct, err := o.target.CreateProduct(o.productData(p))
		if err != nil {
			return outcomeSkipped, err
		}
		p.ShopifyProductID = &createdProduct.ID
		if err := o.store.Save(p); err != nil {
			return outcomeSkipped, err
		}
		created = true

		if err := o.target.CreateVariants(createdProduct.ID, variants); err != nil {
			return outcomeSkipped, err
		}
		if createdProduct.PlaceholderVariantID != "" {
			if err := o.target.DeleteVariant(createdProduct.PlaceholderVariantID); err != nil {
				return outcomeSkipped, err
			}
		}
	}

	resumed, err := o.completeBinding(p)
	if err != nil {
		return outcomeSkipped, err
	}

	if created {
		return outcomeCreated, nil
	}
	if resumed {
		return outcomeUpdated, nil
	}

	if err := o.target.UpdateProduct(*p.ShopifyProductID, o.productData(p)); err != nil {
		return outcomeSkipped, err
	}
	if err := o.store.Save(p); err != nil {
		return outcomeSkipped, err
	}
	o.logger.Info("Updated product in Shopify: %s", p.ProductCode)
	return outcomeUpdated, nil
}

// completeBinding runs the collection and publish steps that are still
// missing for a bound product. Both are gated on persisted state, which
// makes re-runs naturally idempotent.
func (o *Orchestrator) completeBinding(p *models.Product) (bool, error) {
	resumed := false

	if p.ShopifyCollectionID == nil && p.CollectionTitle != "" {
		collectionID, err := o.target.GetOrCreateCollection(p.CollectionTitle, p.CollectionDesc)
		if err != nil {
			return resumed, err
		}
		if err := o.target.AddToCollection(collectionID, *p.ShopifyProductID); err != nil {
			return resumed, err
		}
		p.ShopifyCollectionID = &collectionID
		if err := o.store.Save(p); err != nil {
			return resumed, err
		}
		o.logger.Info("Assigned product %s to collection %s", p.ProductCode, collectionID)
		resumed = true
	}

	if !p.Published {
		if err := o.target.PublishProduct(*p.ShopifyProductID); err != nil {
			return resumed, err
		}
		p.Published = true
		if err := o.store.Save(p); err != nil {
			return resumed, err
		}
		o.logger.Info("Product published to channels: %s", p.ProductCode)
		resumed = true
	}

	return resumed, nil
}

// RunRefDataOnce refreshes the cached Shopify locations and
// publications. Run once before the first sync and periodically after.
func (o *Orchestrator) RunRefDataOnce() error {
	o.logger.Info("Fetching Shopify reference data...")

	locations, err := o.target.GetLocations()
	if err != nil {
		return fmt.Errorf("failed to fetch locations: %w", err)
	}
	for _, location := range locations {
		err := o.store.UpsertLocation(&models.Location{
			ShopifyLocationID: location.ID,
			Name:              location.Name,
			Address:           location.Address,
		})
		if err != nil {
			return err
		}
	}

	publications, err := o.target.GetPublications()
	if err != nil {
		return fmt.Errorf("failed to fetch publications: %w", err)
	}
	for _, publication := range publications {
		err := o.store.UpsertPublication(&models.Publication{
			ShopifyPublicationID:     publication.ID,
			Name:                     publication.Name,
			SupportsFuturePublishing: publication.SupportsFuturePublishing,
		})
		if err != nil {
			return err
		}
	}

	o.logger.Info("Shopify reference data stored: %d locations, %d publications", len(locations), len(publications))
	return nil
}

func (o *Orchestrator) productData(p *models.Product) shopify.ProductData {
	image := ""
	if p.Image != nil {
		image = *p.Image
	}
	return shopify.ProductData{
		Title:       p.Title,
		BodyHTML:    p.BodyHTML,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
		Image:       image,
	}
}
