package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourease/storefront/storage"
)

func newCartHandler(t *testing.T) (*CartHandler, *storage.Queries) {
	t.Helper()
	queries, cleanup := NewTestDB()
	t.Cleanup(cleanup)
	return NewCartHandler(storage.NewCartStore(queries)), queries
}

func TestHandleGetCart_EmptySession(t *testing.T) {
	h, _ := newCartHandler(t)

	c, rec := NewTestContext(http.MethodGet, "/api/cart", nil)
	SetTestSession(c, NewTestSession("sess-1"))

	require.NoError(t, h.HandleGetCart(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body, err := AssertJSONResponse(rec)
	require.NoError(t, err)
	assert.Equal(t, []any{}, body["items"])
	assert.Equal(t, float64(0), body["subtotal_paisa"])
	assert.Equal(t, float64(0), body["item_count"])
}

func TestHandleAddToCart_MergesAndTotals(t *testing.T) {
	h, _ := newCartHandler(t)
	sess := NewTestSession("sess-2")

	add := AddToCartRequest{
		ID:              "prod-1",
		Title:           "Cotton Kurta",
		PricePaisa:      159900,
		Quantity:        1,
		SelectedOptions: map[string]string{"size": "M"},
	}

	c, rec := NewTestContext(http.MethodPost, "/api/cart/items", add)
	SetTestSession(c, sess)
	require.NoError(t, h.HandleAddToCart(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Same product, same options: quantities merge onto one line.
	c, rec = NewTestContext(http.MethodPost, "/api/cart/items", add)
	SetTestSession(c, sess)
	require.NoError(t, h.HandleAddToCart(c))

	body, err := AssertJSONResponse(rec)
	require.NoError(t, err)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, float64(2), items[0].(map[string]any)["quantity"])
	assert.Equal(t, float64(319800), body["subtotal_paisa"])
	assert.Equal(t, float64(2), body["item_count"])
}

func TestHandleAddToCart_DifferentOptionsNewLine(t *testing.T) {
	h, _ := newCartHandler(t)
	sess := NewTestSession("sess-3")

	small := AddToCartRequest{ID: "prod-1", Title: "Cotton Kurta", PricePaisa: 159900, SelectedOptions: map[string]string{"size": "S"}}
	medium := AddToCartRequest{ID: "prod-1", Title: "Cotton Kurta", PricePaisa: 159900, SelectedOptions: map[string]string{"size": "M"}}

	c, _ := NewTestContext(http.MethodPost, "/api/cart/items", small)
	SetTestSession(c, sess)
	require.NoError(t, h.HandleAddToCart(c))

	c, rec := NewTestContext(http.MethodPost, "/api/cart/items", medium)
	SetTestSession(c, sess)
	require.NoError(t, h.HandleAddToCart(c))

	body, err := AssertJSONResponse(rec)
	require.NoError(t, err)
	assert.Len(t, body["items"], 2)
}

func TestHandleUpdateCartItem_BelowOneRemoves(t *testing.T) {
	h, _ := newCartHandler(t)
	sess := NewTestSession("sess-4")

	c, _ := NewTestContext(http.MethodPost, "/api/cart/items", AddToCartRequest{ID: "prod-9", Title: "Silk Scarf", PricePaisa: 89900, Quantity: 3})
	SetTestSession(c, sess)
	require.NoError(t, h.HandleAddToCart(c))

	c, rec := NewTestContext(http.MethodPut, "/api/cart/items/prod-9", UpdateCartItemRequest{Quantity: 0})
	c.SetParamNames("id")
	c.SetParamValues("prod-9")
	SetTestSession(c, sess)
	require.NoError(t, h.HandleUpdateCartItem(c))

	body, err := AssertJSONResponse(rec)
	require.NoError(t, err)
	assert.Equal(t, []any{}, body["items"])
}

func TestHandleClearCart(t *testing.T) {
	h, _ := newCartHandler(t)
	sess := NewTestSession("sess-5")

	c, _ := NewTestContext(http.MethodPost, "/api/cart/items", AddToCartRequest{ID: "prod-2", Title: "Scarlet Dress", PricePaisa: 249900})
	SetTestSession(c, sess)
	require.NoError(t, h.HandleAddToCart(c))

	c, rec := NewTestContext(http.MethodDelete, "/api/cart", nil)
	SetTestSession(c, sess)
	require.NoError(t, h.HandleClearCart(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = NewTestContext(http.MethodGet, "/api/cart", nil)
	SetTestSession(c, sess)
	require.NoError(t, h.HandleGetCart(c))

	body, err := AssertJSONResponse(rec)
	require.NoError(t, err)
	assert.Equal(t, []any{}, body["items"])
}

func TestCartsAreSessionScoped(t *testing.T) {
	h, _ := newCartHandler(t)

	c, _ := NewTestContext(http.MethodPost, "/api/cart/items", AddToCartRequest{ID: "prod-3", Title: "Cotton Kurta", PricePaisa: 159900})
	SetTestSession(c, NewTestSession("sess-a"))
	require.NoError(t, h.HandleAddToCart(c))

	c, rec := NewTestContext(http.MethodGet, "/api/cart", nil)
	SetTestSession(c, NewTestSession("sess-b"))
	require.NoError(t, h.HandleGetCart(c))

	body, err := AssertJSONResponse(rec)
	require.NoError(t, err)
	assert.Equal(t, []any{}, body["items"])
}
