package sync

import (
	"catsync/internal/models"
)

// Decision is the change detector's verdict for one mapped record.
type Decision int

const (
	DecisionCreate Decision = iota
	DecisionUpdate
	DecisionSkip
)

func (d Decision) String() string {
	switch d {
	case DecisionCreate:
		return "create"
	case DecisionUpdate:
		return "update"
	default:
		return "skip"
	}
}

// Detector decides create vs. update vs. no-op by exact field-wise
// comparison. The staleness re-push window is a scheduling policy and
// lives in the orchestrator, not here.
type Detector struct{}

// Decide compares a freshly mapped record against the persisted one.
func (d Detector) Decide(existing, incoming *models.Product) Decision {
	if existing == nil {
		return DecisionCreate
	}
	if d.Equal(existing, incoming) {
		return DecisionSkip
	}
	return DecisionUpdate
}

// Equal reports whether the synced fields of two records match. The
// variant sets are compared structurally, not as raw JSON text.
func (Detector) Equal(a, b *models.Product) bool {
	return a.Title == b.Title &&
		a.BodyHTML == b.BodyHTML &&
		a.Vendor == b.Vendor &&
		a.ProductType == b.ProductType &&
		a.CollectionTitle == b.CollectionTitle &&
		variantsEqual(a.DecodeVariants(), b.DecodeVariants())
}

func variantsEqual(a, b []models.Variant) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
