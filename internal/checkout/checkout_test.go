package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourease/storefront/internal/analytics"
	"github.com/yourease/storefront/internal/backend"
	"github.com/yourease/storefront/internal/cart"
	"github.com/yourease/storefront/storage"
)

type upstream struct {
	mu          sync.Mutex
	orderCalls  int64
	idemKeys    []string
	failNext    atomic.Bool
	lastRequest backend.CreateOrderRequest
}

// newUpstream stands in for the YourEase backend API.
func newUpstream(t *testing.T) (*upstream, *backend.Client) {
	t.Helper()
	u := &upstream{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/orders" && r.Method == http.MethodPost:
			u.mu.Lock()
			u.orderCalls++
			u.idemKeys = append(u.idemKeys, r.Header.Get("Idempotency-Key"))
			_ = json.NewDecoder(r.Body).Decode(&u.lastRequest)
			u.mu.Unlock()

			if u.failNext.Swap(false) {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "upstream down"})
				return
			}
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(backend.Order{ID: "order-1", Status: "placed", TotalPaisa: 25000})
		case r.URL.Path == "/api/addresses":
			_ = json.NewEncoder(w).Encode([]backend.Address{{ID: "addr-1", FullName: "Asha Rao", City: "Pune"}})
		case r.URL.Path == "/api/analytics/track":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	return u, backend.NewClient(server.URL, time.Second)
}

func newTestManager(t *testing.T) (*Manager, *storage.CartStore, *upstream) {
	t.Helper()

	_, queries, cleanup, err := storage.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(cleanup)

	up, client := newUpstream(t)
	carts := storage.NewCartStore(queries)
	tracker := analytics.NewTracker(analytics.NewGA4Client("", ""), client)
	return NewManager(carts, queries, client, tracker), carts, up
}

func seedCart(t *testing.T, carts *storage.CartStore, sessionID string) {
	t.Helper()
	items := []cart.LineItem{
		{ID: "p1", Title: "Kurta", PricePaisa: 10000, Quantity: 2, SelectedOptions: map[string]string{"color": "Black"}},
		{ID: "p2", Title: "Scarf", PricePaisa: 5000, Quantity: 1},
	}
	require.NoError(t, carts.Save(context.Background(), sessionID, items))
}

func TestBegin_EmptyCartGuard(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	_, err := mgr.Begin(context.Background(), "sess", "")
	assert.ErrorIs(t, err, ErrEmptyCart)

	state, err := mgr.State(context.Background(), "sess")
	require.NoError(t, err)
	assert.Equal(t, StateEmpty, state)
}

func TestBegin_ReturnsDraftWithTotalsAndAddresses(t *testing.T) {
	mgr, carts, _ := newTestManager(t)
	seedCart(t, carts, "sess")

	draft, err := mgr.Begin(context.Background(), "sess", "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(25000), draft.SubtotalPaisa)
	assert.Equal(t, int64(3), draft.ItemCount)
	assert.Equal(t, PaymentMethodCOD, draft.PaymentMethod)
	require.Len(t, draft.SavedAddresses, 1)
	assert.Equal(t, "Asha Rao", draft.SavedAddresses[0].FullName)
}

func TestSubmit_SuccessClearsCart(t *testing.T) {
	mgr, carts, up := newTestManager(t)
	seedCart(t, carts, "sess")
	ctx := context.Background()

	order, err := mgr.Submit(ctx, "sess", SubmitRequest{
		Address: backend.ShippingAddress{FullName: "Asha Rao", Line1: "12 MG Road", City: "Pune", PostalCode: "411001", Phone: "9999999999"},
	})
	require.NoError(t, err)
	assert.Equal(t, "order-1", order.ID)

	// Options carried through verbatim.
	assert.Equal(t, map[string]string{"color": "Black"}, up.lastRequest.Items[0].SelectedOptions)
	assert.Equal(t, PaymentMethodCOD, up.lastRequest.PaymentMethod)
	assert.Equal(t, int64(25000), up.lastRequest.SubtotalPaisa)

	remaining, err := carts.Get(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	state, err := mgr.State(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, StateEmpty, state)
}

func TestSubmit_FailurePreservesCart(t *testing.T) {
	mgr, carts, up := newTestManager(t)
	seedCart(t, carts, "sess")
	up.failNext.Store(true)
	ctx := context.Background()

	_, err := mgr.Submit(ctx, "sess", SubmitRequest{})
	require.Error(t, err)

	remaining, err := carts.Get(ctx, "sess")
	require.NoError(t, err)
	assert.Len(t, remaining, 2)

	// Back to Filling, not stuck in Submitting.
	state, err := mgr.State(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, StateFilling, state)
}

func TestSubmit_RetryReusesIdempotencyKey(t *testing.T) {
	mgr, carts, up := newTestManager(t)
	seedCart(t, carts, "sess")
	up.failNext.Store(true)
	ctx := context.Background()

	_, err := mgr.Submit(ctx, "sess", SubmitRequest{})
	require.Error(t, err)

	_, err = mgr.Submit(ctx, "sess", SubmitRequest{})
	require.NoError(t, err)

	require.Len(t, up.idemKeys, 2)
	assert.Equal(t, up.idemKeys[0], up.idemKeys[1])
	assert.NotEmpty(t, up.idemKeys[0])
}

func TestSubmit_FreshKeyAfterSuccess(t *testing.T) {
	mgr, carts, up := newTestManager(t)
	ctx := context.Background()

	seedCart(t, carts, "sess")
	_, err := mgr.Submit(ctx, "sess", SubmitRequest{})
	require.NoError(t, err)

	seedCart(t, carts, "sess")
	_, err = mgr.Submit(ctx, "sess", SubmitRequest{})
	require.NoError(t, err)

	require.Len(t, up.idemKeys, 2)
	assert.NotEqual(t, up.idemKeys[0], up.idemKeys[1])
}

func TestSubmit_EmptyCartNeverSubmits(t *testing.T) {
	mgr, _, up := newTestManager(t)

	_, err := mgr.Submit(context.Background(), "sess", SubmitRequest{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, int64(0), up.orderCalls)
}

func TestSubmit_GuestEmailCarried(t *testing.T) {
	mgr, carts, up := newTestManager(t)
	seedCart(t, carts, "sess")

	_, err := mgr.Submit(context.Background(), "sess", SubmitRequest{GuestEmail: "guest@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "guest@example.com", up.lastRequest.GuestEmail)
}
