package rivile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"catsync/internal/config"
	"catsync/internal/logger"
)

// RequestError is returned for any non-success response from the
// Rivile API. The raw response body is carried for diagnostics. No
// retry happens at this layer; the caller's next scheduled pass is the
// retry.
type RequestError struct {
	Method     string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("rivile request %s failed: %d - %s", e.Method, e.StatusCode, e.Body)
}

// Client talks to the Rivile RPC endpoint: a single POST accepting
// {method, params}. Method names come from configuration.
type Client struct {
	apiURL     string
	apiKey     string
	listCode   string
	methods    methods
	httpClient *http.Client
	logger     *logger.Logger
}

type methods struct {
	productList  string
	productGroup string
	productBrand string
	description  string
	inventory    string
	collection   string
}

func NewClient(cfg *config.Config, logger *logger.Logger) *Client {
	return &Client{
		apiURL:   cfg.RivileAPIURL,
		apiKey:   cfg.RivileAPIKey,
		listCode: cfg.RivileList,
		methods: methods{
			productList:  cfg.RivileProductListMethod,
			productGroup: cfg.RivileProductGroupMethod,
			productBrand: cfg.RivileProductBrandMethod,
			description:  cfg.RivileDescriptionMethod,
			inventory:    cfg.RivileInventoryMethod,
			collection:   cfg.RivileCollectionMethod,
		},
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// GetProducts fetches one page of the product feed. Pagination starts
// at page 1; an empty page ends the walk.
func (c *Client) GetProducts(pageNumber int) (*ProductPage, error) {
	params := map[string]interface{}{
		"list":       c.listCode,
		"pagenumber": pageNumber,
	}

	var page ProductPage
	if err := c.call(c.methods.productList, params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetDescription resolves the HTML description text for a product code.
// Missing records or fields yield an empty string.
func (c *Client) GetDescription(code string) (string, error) {
	params := map[string]interface{}{
		"forma":  "PSN17",
		"kodas1": code,
		"kuris":  3,
	}

	var resp struct {
		Lpap EntryList `json:"lpap"`
	}
	if err := c.call(c.methods.description, params, &resp); err != nil {
		return "", err
	}

	var entry struct {
		Pap struct {
			Value FlexString `json:"value"`
		} `json:"pap"`
	}
	resp.Lpap.First(&entry)
	return string(entry.Pap.Value), nil
}

// GetProductType resolves the product group name for a group code.
func (c *Client) GetProductType(groupCode string) (string, error) {
	params := map[string]interface{}{
		"fil": fmt.Sprintf("n19_kodas_gs='%s'", groupCode),
	}

	var resp struct {
		N19 EntryList `json:"N19"`
	}
	if err := c.call(c.methods.productGroup, params, &resp); err != nil {
		return "", err
	}

	var entry struct {
		Name FlexString `json:"N19_PAV_K1"`
	}
	resp.N19.First(&entry)
	return string(entry.Name), nil
}

// GetBrand resolves the brand name for a brand code.
func (c *Client) GetBrand(brandCode string) (string, error) {
	params := map[string]interface{}{
		"fil": fmt.Sprintf("n35_kodas_ls='%s'", brandCode),
	}

	var resp struct {
		N35 EntryList `json:"N35"`
	}
	if err := c.call(c.methods.productBrand, params, &resp); err != nil {
		return "", err
	}

	var entry struct {
		Name FlexString `json:"N35_PAV_K1"`
	}
	resp.N35.First(&entry)
	return string(entry.Name), nil
}

// GetCollection resolves the collection title and description for a
// collection code.
func (c *Client) GetCollection(collectionCode string) (*CollectionDetails, error) {
	params := map[string]interface{}{
		"fil": fmt.Sprintf("n35_kodas_ls='%s'", collectionCode),
	}

	var resp struct {
		N35 EntryList `json:"N35"`
	}
	if err := c.call(c.methods.collection, params, &resp); err != nil {
		return nil, err
	}

	var entry struct {
		Title       FlexString `json:"N35_PAV"`
		Description FlexString `json:"N35_PAV_K3"`
	}
	resp.N35.First(&entry)
	return &CollectionDetails{
		Title:       string(entry.Title),
		Description: string(entry.Description),
	}, nil
}

// GetInventoryQuantity resolves the on-hand quantity for a variant.
// Missing or non-numeric values default to zero.
func (c *Client) GetInventoryQuantity(sku, variantCode string) (int, error) {
	params := map[string]interface{}{
		"fil": fmt.Sprintf("i17_kodas_ps='%s' and i17_kodas_is=%s", sku, variantCode),
	}

	var resp struct {
		I17 EntryList `json:"I17"`
	}
	if err := c.call(c.methods.inventory, params, &resp); err != nil {
		return 0, err
	}

	var entry struct {
		Quantity FlexInt `json:"likutis_us_a"`
	}
	resp.I17.First(&entry)
	return int(entry.Quantity), nil
}

func (c *Client) call(method string, params map[string]interface{}, out interface{}) error {
	payload, err := json.Marshal(map[string]interface{}{
		"method": method,
		"params": params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", c.apiURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("ApiKey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &RequestError{Method: method, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}

	return nil
}
