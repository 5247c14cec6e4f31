package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourease/storefront/internal/analytics"
	"github.com/yourease/storefront/internal/backend"
	"github.com/yourease/storefront/internal/cart"
	"github.com/yourease/storefront/internal/checkout"
	"github.com/yourease/storefront/storage"
)

func newCheckoutHandler(t *testing.T) (*CheckoutHandler, *storage.CartStore) {
	t.Helper()
	queries, cleanup := NewTestDB()
	t.Cleanup(cleanup)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/orders" && r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(backend.Order{ID: "order-1", Status: "pending", TotalPaisa: 159900})
			return
		}
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(upstream.Close)

	client := backend.NewClient(upstream.URL, 5*time.Second)
	tracker := analytics.NewTracker(analytics.NewGA4Client("", ""), client)
	carts := storage.NewCartStore(queries)
	manager := checkout.NewManager(carts, queries, client, tracker)
	return NewCheckoutHandler(manager), carts
}

func TestHandleGetCheckout_EmptyCart(t *testing.T) {
	h, _ := newCheckoutHandler(t)

	c, rec := NewTestContext(http.MethodGet, "/api/checkout", nil)
	SetTestSession(c, NewTestSession("sess-1"))

	require.NoError(t, h.HandleGetCheckout(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body, err := AssertJSONResponse(rec)
	require.NoError(t, err)
	assert.Equal(t, "empty", body["state"])
	assert.Nil(t, body["draft"])
}

func TestHandleSubmitCheckout_RejectsIncompleteAddress(t *testing.T) {
	h, carts := newCheckoutHandler(t)
	sess := NewTestSession("sess-2")

	require.NoError(t, carts.Save(context.Background(), sess.ID, []cart.LineItem{
		{ID: "prod-1", Title: "Cotton Kurta", PricePaisa: 159900, Quantity: 1},
	}))

	c, _ := NewTestContext(http.MethodPost, "/api/checkout", SubmitCheckoutRequest{
		Address: backend.ShippingAddress{FullName: "Asha Rao"},
	})
	SetTestSession(c, sess)

	err := h.HandleSubmitCheckout(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestHandleSubmitCheckout_GuestNeedsEmail(t *testing.T) {
	h, carts := newCheckoutHandler(t)
	sess := NewTestSession("sess-3")

	require.NoError(t, carts.Save(context.Background(), sess.ID, []cart.LineItem{
		{ID: "prod-1", Title: "Cotton Kurta", PricePaisa: 159900, Quantity: 1},
	}))

	c, _ := NewTestContext(http.MethodPost, "/api/checkout", SubmitCheckoutRequest{
		Address: backend.ShippingAddress{
			FullName: "Asha Rao", Line1: "14 MG Road", City: "Pune", PostalCode: "411001",
		},
	})
	SetTestSession(c, sess)

	err := h.HandleSubmitCheckout(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestHandleSubmitCheckout_PlacesOrderAndClearsCart(t *testing.T) {
	h, carts := newCheckoutHandler(t)
	sess := NewTestSession("sess-4")

	require.NoError(t, carts.Save(context.Background(), sess.ID, []cart.LineItem{
		{ID: "prod-1", Title: "Cotton Kurta", PricePaisa: 159900, Quantity: 1},
	}))

	c, rec := NewTestContext(http.MethodPost, "/api/checkout", SubmitCheckoutRequest{
		Address: backend.ShippingAddress{
			FullName: "Asha Rao", Line1: "14 MG Road", City: "Pune", PostalCode: "411001",
		},
		GuestEmail: "asha@example.com",
	})
	SetTestSession(c, sess)

	require.NoError(t, h.HandleSubmitCheckout(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	body, err := AssertJSONResponse(rec)
	require.NoError(t, err)
	assert.Equal(t, "succeeded", body["state"])

	items, err := carts.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
