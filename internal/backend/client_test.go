package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProducts_BuildsQuery(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		_ = json.NewEncoder(w).Encode([]Product{{ID: "p1", Title: "Kurta", PricePaisa: 159900}})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	products, err := client.ListProducts(context.Background(), ListProductsParams{Category: "clothing", Keyword: "kurta", Page: 2})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)
	assert.Contains(t, gotPath, "category=clothing")
	assert.Contains(t, gotPath, "keyword=kurta")
	assert.Contains(t, gotPath, "page=2")
}

func TestCreateOrder_SendsIdempotencyKeyAndToken(t *testing.T) {
	var gotIdem, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdem = r.Header.Get("Idempotency-Key")
		gotAuth = r.Header.Get("Authorization")

		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "cash_on_delivery", req.PaymentMethod)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Order{ID: "order-1", Status: "placed"})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	order, err := client.CreateOrder(context.Background(), "tok-123", "idem-abc", CreateOrderRequest{
		Items:         []OrderItem{{ProductID: "p1", Quantity: 1, PricePaisa: 100}},
		PaymentMethod: "cash_on_delivery",
	})
	require.NoError(t, err)
	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, "idem-abc", gotIdem)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestCreateOrder_SurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "address required"})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.CreateOrder(context.Background(), "", "idem", CreateOrderRequest{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "address required", apiErr.Message)
}

func TestLookupGuestOrder_QueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "order-9", r.URL.Query().Get("order_id"))
		assert.Equal(t, "guest@example.com", r.URL.Query().Get("email"))
		_ = json.NewEncoder(w).Encode(Order{ID: "order-9"})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	order, err := client.LookupGuestOrder(context.Background(), "order-9", "guest@example.com")
	require.NoError(t, err)
	assert.Equal(t, "order-9", order.ID)
}

func TestCreateReview_MultipartUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "5", r.FormValue("rating"))
		assert.Equal(t, "great kurta", r.FormValue("comment"))

		file, header, err := r.FormFile("media")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "photo.jpg", header.Filename)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Review{ID: "r1", Rating: 5})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	review, err := client.CreateReview(context.Background(), "tok", "p1", 5, "great kurta", []ReviewMedia{
		{Filename: "photo.jpg", Content: strings.NewReader("jpeg-bytes")},
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", review.ID)
}

func TestDecodeError_NonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.ListCategories(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Message)
}
