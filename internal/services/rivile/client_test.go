package rivile

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"catsync/internal/config"
	"catsync/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) *config.Config {
	return &config.Config{
		RivileAPIURL:             url,
		RivileAPIKey:             "test-key",
		RivileList:               "A",
		RivileProductListMethod:  "GET_N17_LIST",
		RivileProductGroupMethod: "GET_N19_LIST",
		RivileProductBrandMethod: "GET_N35_LIST",
		RivileDescriptionMethod:  "GET_PAP_LIST",
		RivileInventoryMethod:    "GET_I17_LIST",
		RivileCollectionMethod:   "GET_N35_LIST",
	}
}

type rpcRequest struct {
	Method string                 `json:"method"`
	Params map[string]interface{} `json:"params"`
}

func newRPCServer(t *testing.T, handler func(req rpcRequest) (int, string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "test-key", r.Header.Get("ApiKey"))

		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		status, body := handler(req)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestGetProductsPagination(t *testing.T) {
	server := newRPCServer(t, func(req rpcRequest) (int, string) {
		assert.Equal(t, "GET_N17_LIST", req.Method)
		assert.Equal(t, "A", req.Params["list"])

		if req.Params["pagenumber"] == float64(1) {
			return 200, `{"N17": [{"N17_KODAS_PS": "P1"}, {"N17_KODAS_PS": "P2"}]}`
		}
		return 200, `{"N17": []}`
	})
	defer server.Close()

	client := NewClient(testConfig(server.URL), logger.New("error"))

	page, err := client.GetProducts(1)
	require.NoError(t, err)
	assert.Len(t, page.Products, 2)

	page, err = client.GetProducts(2)
	require.NoError(t, err)
	assert.Empty(t, page.Products)
}

func TestGetProductsFailure(t *testing.T) {
	server := newRPCServer(t, func(req rpcRequest) (int, string) {
		return 500, `{"error": "boom"}`
	})
	defer server.Close()

	client := NewClient(testConfig(server.URL), logger.New("error"))

	_, err := client.GetProducts(1)
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "GET_N17_LIST", reqErr.Method)
	assert.Equal(t, 500, reqErr.StatusCode)
	assert.Contains(t, reqErr.Body, "boom")
}

func TestGetDescription(t *testing.T) {
	server := newRPCServer(t, func(req rpcRequest) (int, string) {
		assert.Equal(t, "GET_PAP_LIST", req.Method)
		assert.Equal(t, "PSN17", req.Params["forma"])
		assert.Equal(t, "P1", req.Params["kodas1"])
		return 200, `{"lpap": {"pap": {"value": "<p>desc</p>"}}}`
	})
	defer server.Close()

	client := NewClient(testConfig(server.URL), logger.New("error"))

	description, err := client.GetDescription("P1")
	require.NoError(t, err)
	assert.Equal(t, "<p>desc</p>", description)
}

func TestGetDescriptionMissingPath(t *testing.T) {
	server := newRPCServer(t, func(req rpcRequest) (int, string) {
		return 200, `{"lpap": []}`
	})
	defer server.Close()

	client := NewClient(testConfig(server.URL), logger.New("error"))

	description, err := client.GetDescription("P1")
	require.NoError(t, err)
	assert.Equal(t, "", description)
}

func TestPointLookups(t *testing.T) {
	server := newRPCServer(t, func(req rpcRequest) (int, string) {
		switch req.Method {
		case "GET_N19_LIST":
			assert.Equal(t, "n19_kodas_gs='G1'", req.Params["fil"])
			return 200, `{"N19": {"N19_PAV_K1": "Suits"}}`
		case "GET_N35_LIST":
			// brand and collection share the N35 list method
			return 200, `{"N35": [{"N35_PAV_K1": "Acme", "N35_PAV": "Summer", "N35_PAV_K3": "Summer things"}]}`
		case "GET_I17_LIST":
			assert.Equal(t, "i17_kodas_ps='SKU1' and i17_kodas_is=2", req.Params["fil"])
			return 200, `{"I17": {"likutis_us_a": "15.00"}}`
		}
		return 404, `{}`
	})
	defer server.Close()

	client := NewClient(testConfig(server.URL), logger.New("error"))

	productType, err := client.GetProductType("G1")
	require.NoError(t, err)
	assert.Equal(t, "Suits", productType)

	brand, err := client.GetBrand("B1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", brand)

	collection, err := client.GetCollection("C1")
	require.NoError(t, err)
	assert.Equal(t, "Summer", collection.Title)
	assert.Equal(t, "Summer things", collection.Description)

	quantity, err := client.GetInventoryQuantity("SKU1", "2")
	require.NoError(t, err)
	assert.Equal(t, 15, quantity)
}

func TestInventoryQuantityMissingRecord(t *testing.T) {
	server := newRPCServer(t, func(req rpcRequest) (int, string) {
		return 200, `{}`
	})
	defer server.Close()

	client := NewClient(testConfig(server.URL), logger.New("error"))

	quantity, err := client.GetInventoryQuantity("SKU1", "2")
	require.NoError(t, err)
	assert.Equal(t, 0, quantity)
}
