package shopify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"catsync/internal/logger"
	"catsync/internal/models"
)

// RefData exposes the locally cached Shopify reference tables the
// client needs for variant inventory and publishing.
type RefData interface {
	ListLocations() ([]models.Location, error)
	ListPublications(name string) ([]models.Publication, error)
}

// Client drives the Shopify Admin GraphQL API. Every operation is one
// synchronous round trip; a transport failure, a top-level GraphQL
// error or a non-empty userErrors list all surface as *OperationError.
type Client struct {
	shopURL     string
	accessToken string
	refData     RefData
	httpClient  *http.Client
	logger      *logger.Logger
}

func NewClient(shopURL, accessToken string, refData RefData, logger *logger.Logger) *Client {
	return &Client{
		shopURL:     shopURL,
		accessToken: accessToken,
		refData:     refData,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// CreateProduct creates a shell product. Shopify attaches a placeholder
// variant which the caller must delete after creating real variants.
func (c *Client) CreateProduct(data ProductData) (*CreatedProduct, error) {
	const op = "productCreate"

	input := map[string]interface{}{
		"title":           defaultString(data.Title, "No Title"),
		"productType":     defaultString(data.ProductType, "Default"),
		"vendor":          defaultString(data.Vendor, "No Vendor"),
		"descriptionHtml": data.BodyHTML,
		"productOptions":  map[string]interface{}{"name": "Size", "values": map[string]interface{}{"name": "000"}},
	}
	variables := map[string]interface{}{"input": input}
	if data.Image != "" {
		variables["media"] = map[string]interface{}{
			"mediaContentType": "IMAGE",
			"originalSource":   data.Image,
		}
	}

	data_, raw, err := c.do(op, productCreateMutation, variables)
	if err != nil {
		return nil, err
	}

	var out struct {
		ProductCreate struct {
			Product struct {
				ID       string `json:"id"`
				Variants edges  `json:"variants"`
			} `json:"product"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"productCreate"`
	}
	if err := json.Unmarshal(data_, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	if len(out.ProductCreate.UserErrors) > 0 || out.ProductCreate.Product.ID == "" {
		return nil, &OperationError{Op: op, Payload: raw}
	}

	created := &CreatedProduct{ID: out.ProductCreate.Product.ID}
	if len(out.ProductCreate.Product.Variants.Edges) > 0 {
		var node struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(out.ProductCreate.Product.Variants.Edges[0].Node, &node); err == nil {
			created.PlaceholderVariantID = node.ID
		}
	}

	c.logger.Info("Created product in Shopify: %s", created.ID)
	return created, nil
}

// CreateVariants bulk-creates all real variants of a product, binding
// each variant's available quantity to the first configured location.
func (c *Client) CreateVariants(productID string, variants []models.Variant) error {
	const op = "productVariantsBulkCreate"

	locations, err := c.refData.ListLocations()
	if err != nil {
		return fmt.Errorf("failed to list locations: %w", err)
	}
	if len(locations) == 0 {
		return ErrNoLocation
	}
	locationID := locations[0].ShopifyLocationID

	variantInputs := make([]map[string]interface{}, 0, len(variants))
	for _, variant := range variants {
		variantInputs = append(variantInputs, map[string]interface{}{
			"optionValues": []map[string]interface{}{
				{
					"optionName": "Size",
					"name":       defaultString(variant.Option1, "Default Option"),
				},
			},
			"inventoryItem": map[string]interface{}{
				"sku": variant.SKU,
			},
			"inventoryQuantities": map[string]interface{}{
				"availableQuantity": variant.InventoryQuantity,
				"locationId":        locationID,
			},
			"price": defaultString(variant.Price, "0.00"),
		})
	}

	variables := map[string]interface{}{"productId": productID, "variants": variantInputs}
	data, raw, err := c.do(op, productVariantsBulkCreateMutation, variables)
	if err != nil {
		return err
	}

	var out struct {
		ProductVariantsBulkCreate struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"productVariantsBulkCreate"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	if len(out.ProductVariantsBulkCreate.UserErrors) > 0 {
		return &OperationError{Op: op, Payload: raw}
	}

	c.logger.Info("Created %d variants for product %s", len(variants), productID)
	return nil
}

// DeleteVariant removes a variant, normally the placeholder attached by
// CreateProduct. Run it only after real variants exist so the product
// is never left variant-less.
func (c *Client) DeleteVariant(variantID string) error {
	const op = "productVariantDelete"

	variables := map[string]interface{}{"id": variantID}
	data, raw, err := c.do(op, productVariantDeleteMutation, variables)
	if err != nil {
		return err
	}

	var out struct {
		ProductVariantDelete struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"productVariantDelete"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	if len(out.ProductVariantDelete.UserErrors) > 0 {
		return &OperationError{Op: op, Payload: raw}
	}

	return nil
}

// GetOrCreateCollection looks a collection up by title and creates it
// when absent. Not safe under concurrent duplicate-title creation; the
// single-worker sync model is what keeps this race out of reach.
func (c *Client) GetOrCreateCollection(title, description string) (string, error) {
	data, _, err := c.do("getCollections", collectionsQuery, map[string]interface{}{"title": title})
	if err != nil {
		return "", err
	}

	var found struct {
		Collections edges `json:"collections"`
	}
	if err := json.Unmarshal(data, &found); err != nil {
		return "", fmt.Errorf("failed to decode collections response: %w", err)
	}
	if len(found.Collections.Edges) > 0 {
		var node struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(found.Collections.Edges[0].Node, &node); err == nil && node.ID != "" {
			return node.ID, nil
		}
	}

	const op = "collectionCreate"
	variables := map[string]interface{}{
		"input": map[string]interface{}{"title": title, "descriptionHtml": description},
	}
	data, raw, err := c.do(op, collectionCreateMutation, variables)
	if err != nil {
		return "", err
	}

	var out struct {
		CollectionCreate struct {
			Collection struct {
				ID string `json:"id"`
			} `json:"collection"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"collectionCreate"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	if len(out.CollectionCreate.UserErrors) > 0 || out.CollectionCreate.Collection.ID == "" {
		return "", &OperationError{Op: op, Payload: raw}
	}

	c.logger.Info("Created collection in Shopify: %s", out.CollectionCreate.Collection.ID)
	return out.CollectionCreate.Collection.ID, nil
}

// AddToCollection associates a product with a collection.
func (c *Client) AddToCollection(collectionID, productID string) error {
	const op = "collectionAddProductsV2"

	variables := map[string]interface{}{"id": collectionID, "productIds": []string{productID}}
	data, raw, err := c.do(op, collectionAddProductsMutation, variables)
	if err != nil {
		return err
	}

	var out struct {
		CollectionAddProductsV2 struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"collectionAddProductsV2"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	if len(out.CollectionAddProductsV2.UserErrors) > 0 {
		return &OperationError{Op: op, Payload: raw}
	}

	return nil
}

// PublishProduct publishes a product to every "Online Store"
// publication in one call. Fails before any request when none are
// configured.
func (c *Client) PublishProduct(productID string) error {
	const op = "publishablePublish"

	publications, err := c.refData.ListPublications("Online Store")
	if err != nil {
		return fmt.Errorf("failed to list publications: %w", err)
	}
	if len(publications) == 0 {
		return ErrNoPublications
	}

	input := make([]map[string]interface{}, 0, len(publications))
	for _, publication := range publications {
		input = append(input, map[string]interface{}{
			"publicationId": publication.ShopifyPublicationID,
		})
	}

	variables := map[string]interface{}{"id": productID, "input": input}
	data, raw, err := c.do(op, publishablePublishMutation, variables)
	if err != nil {
		return err
	}

	var out struct {
		PublishablePublish struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"publishablePublish"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	if len(out.PublishablePublish.UserErrors) > 0 {
		return &OperationError{Op: op, Payload: raw}
	}

	c.logger.Info("Published product to %d channels: %s", len(publications), productID)
	return nil
}

// UpdateProduct pushes title, description, type and vendor changes.
// Variants and collection membership are create-path concerns and are
// deliberately left untouched here.
func (c *Client) UpdateProduct(productID string, data ProductData) error {
	const op = "productUpdate"

	variables := map[string]interface{}{
		"input": map[string]interface{}{
			"id":              productID,
			"title":           defaultString(data.Title, "No Title"),
			"descriptionHtml": data.BodyHTML,
			"productType":     defaultString(data.ProductType, "Default"),
			"vendor":          defaultString(data.Vendor, "No Vendor"),
		},
	}

	respData, raw, err := c.do(op, productUpdateMutation, variables)
	if err != nil {
		return err
	}

	var out struct {
		ProductUpdate struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"productUpdate"`
	}
	if err := json.Unmarshal(respData, &out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	if len(out.ProductUpdate.UserErrors) > 0 {
		return &OperationError{Op: op, Payload: raw}
	}

	return nil
}

// GetLocations queries the shop's inventory locations.
func (c *Client) GetLocations() ([]RemoteLocation, error) {
	data, _, err := c.do("locations", locationsQuery, nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Locations edges `json:"locations"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode locations response: %w", err)
	}

	locations := make([]RemoteLocation, 0, len(out.Locations.Edges))
	for _, edge := range out.Locations.Edges {
		var node struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Address struct {
				Formatted []string `json:"formatted"`
			} `json:"address"`
		}
		if err := json.Unmarshal(edge.Node, &node); err != nil {
			continue
		}
		locations = append(locations, RemoteLocation{
			ID:      node.ID,
			Name:    node.Name,
			Address: strings.Join(node.Address.Formatted, ", "),
		})
	}
	return locations, nil
}

// GetPublications queries the shop's sales channel publications.
func (c *Client) GetPublications() ([]RemotePublication, error) {
	data, _, err := c.do("publications", publicationsQuery, nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Publications edges `json:"publications"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode publications response: %w", err)
	}

	publications := make([]RemotePublication, 0, len(out.Publications.Edges))
	for _, edge := range out.Publications.Edges {
		var node struct {
			ID                       string `json:"id"`
			Name                     string `json:"name"`
			SupportsFuturePublishing bool   `json:"supportsFuturePublishing"`
		}
		if err := json.Unmarshal(edge.Node, &node); err != nil {
			continue
		}
		publications = append(publications, RemotePublication{
			ID:                       node.ID,
			Name:                     node.Name,
			SupportsFuturePublishing: node.SupportsFuturePublishing,
		})
	}
	return publications, nil
}

func (c *Client) do(op, query string, variables map[string]interface{}) (json.RawMessage, []byte, error) {
	requestBody := map[string]interface{}{"query": query}
	if len(variables) > 0 {
		requestBody["variables"] = variables
	}

	payload, err := json.Marshal(requestBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal %s request: %w", op, err)
	}

	base := c.shopURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	url := fmt.Sprintf("%s/admin/api/2024-07/graphql.json", base)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("shopify %s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil, &OperationError{Op: op, Payload: body}
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	if len(envelope.Errors) > 0 && string(envelope.Errors) != "null" {
		return nil, nil, &OperationError{Op: op, Payload: body}
	}

	return envelope.Data, body, nil
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
