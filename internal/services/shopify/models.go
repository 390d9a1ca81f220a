package shopify

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoLocation means the locations reference table is empty, so
// variant inventory cannot be placed anywhere.
var ErrNoLocation = errors.New("no shopify location configured")

// ErrNoPublications means no "Online Store" publications are known, so
// a product cannot be published.
var ErrNoPublications = errors.New("no shopify publications configured")

// OperationError is any failed Shopify call: a non-success HTTP
// response, a top-level GraphQL error, or a non-empty userErrors list.
// The raw response payload is kept for diagnostics.
type OperationError struct {
	Op      string
	Payload json.RawMessage
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("shopify %s failed: %s", e.Op, string(e.Payload))
}

// UserError is Shopify's structured mutation error.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// ProductData carries the product-level fields sent to Shopify.
// Defaults are substituted for blank fields at request build time so a
// mutation never carries null where a placeholder works.
type ProductData struct {
	Title       string
	BodyHTML    string
	Vendor      string
	ProductType string
	Image       string
}

// CreatedProduct is the result of a productCreate call. Shopify always
// attaches one placeholder variant at creation; its id is returned so
// the caller can delete it once real variants exist.
type CreatedProduct struct {
	ID                   string
	PlaceholderVariantID string
}

// RemoteLocation is a location node from the locations query.
type RemoteLocation struct {
	ID      string
	Name    string
	Address string
}

// RemotePublication is a publication node from the publications query.
type RemotePublication struct {
	ID                       string
	Name                     string
	SupportsFuturePublishing bool
}

type edges struct {
	Edges []struct {
		Node json.RawMessage `json:"node"`
	} `json:"edges"`
}
