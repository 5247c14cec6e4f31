// Package checkout drives the checkout session: Filling while the
// address form is open, Submitting while the order request is in
// flight, Succeeded once the upstream accepts it. Failure drops the
// session back to Filling with the cart intact.
package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/yourease/storefront/internal/analytics"
	"github.com/yourease/storefront/internal/backend"
	"github.com/yourease/storefront/internal/cart"
	"github.com/yourease/storefront/storage"
)

// PaymentMethodCOD is the only payment method this build ships.
const PaymentMethodCOD = "cash_on_delivery"

type State string

const (
	StateEmpty      State = "empty"
	StateFilling    State = "filling"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
)

var (
	// ErrEmptyCart guards entry: an empty cart never reaches Filling,
	// let alone Submitting.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrSubmitInFlight rejects a second submit while one is running.
	ErrSubmitInFlight = errors.New("checkout already submitting")
)

// Draft is what the checkout page renders while Filling: the cart
// snapshot, derived totals, and any saved addresses.
type Draft struct {
	Items          []cart.LineItem   `json:"items"`
	SubtotalPaisa  int64             `json:"subtotal_paisa"`
	ItemCount      int64             `json:"item_count"`
	PaymentMethod  string            `json:"payment_method"`
	SavedAddresses []backend.Address `json:"saved_addresses,omitempty"`
}

// SubmitRequest carries the address form plus session credentials.
type SubmitRequest struct {
	Address    backend.ShippingAddress
	Token      string
	GuestEmail string
	Consent    bool
}

// Manager owns checkout sessions across the service.
type Manager struct {
	carts   *storage.CartStore
	queries *storage.Queries
	backend *backend.Client
	tracker *analytics.Tracker

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewManager(carts *storage.CartStore, queries *storage.Queries, backendClient *backend.Client, tracker *analytics.Tracker) *Manager {
	return &Manager{
		carts:    carts,
		queries:  queries,
		backend:  backendClient,
		tracker:  tracker,
		inFlight: make(map[string]bool),
	}
}

// Begin enters Filling for a session. The empty-cart guard lives here:
// a session with nothing in the cart gets ErrEmptyCart and the caller
// shows the empty-state view instead.
func (m *Manager) Begin(ctx context.Context, sessionID, token string) (*Draft, error) {
	items, err := m.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	draft := &Draft{
		Items:         items,
		SubtotalPaisa: cart.SubtotalPaisa(items),
		ItemCount:     cart.ItemCount(items),
		PaymentMethod: PaymentMethodCOD,
	}

	// Saved addresses are a convenience; a fetch failure does not block
	// the form.
	if token != "" {
		addresses, err := m.backend.ListAddresses(ctx, token)
		if err != nil {
			slog.Warn("failed to load saved addresses", "error", err)
		} else {
			draft.SavedAddresses = addresses
		}
	}
	return draft, nil
}

// PaymentMethods lists the upstream payment options. Only cash on
// delivery is expected, but the list is proxied so new methods appear
// without a redeploy.
func (m *Manager) PaymentMethods(ctx context.Context) ([]backend.PaymentMethod, error) {
	return m.backend.ListPaymentMethods(ctx)
}

// State reports where a session currently is.
func (m *Manager) State(ctx context.Context, sessionID string) (State, error) {
	m.mu.Lock()
	submitting := m.inFlight[sessionID]
	m.mu.Unlock()
	if submitting {
		return StateSubmitting, nil
	}

	items, err := m.carts.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return StateEmpty, nil
	}
	return StateFilling, nil
}

// Submit snapshots the cart, attaches the session's idempotency key
// and posts the order. On success the persisted cart is cleared
// unconditionally and the purchase event fires exactly once. On
// failure the cart is untouched and the same key is reused on retry,
// so an upstream that honors it cannot double-create an order.
func (m *Manager) Submit(ctx context.Context, sessionID string, req SubmitRequest) (*backend.Order, error) {
	m.mu.Lock()
	if m.inFlight[sessionID] {
		m.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	m.inFlight[sessionID] = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.inFlight, sessionID)
		m.mu.Unlock()
	}()

	items, err := m.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	key, err := m.idempotencyKey(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	orderReq := backend.CreateOrderRequest{
		Items:           toOrderItems(items),
		ShippingAddress: req.Address,
		PaymentMethod:   PaymentMethodCOD,
		SubtotalPaisa:   cart.SubtotalPaisa(items),
		GuestEmail:      req.GuestEmail,
	}

	order, err := m.backend.CreateOrder(ctx, req.Token, key, orderReq)
	if err != nil {
		slog.Error("order creation failed", "session_id", sessionID, "idempotency_key", key, "error", err)
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := m.queries.MarkCheckoutAttempt(ctx, key, "succeeded", order.ID); err != nil {
		slog.Warn("failed to mark checkout attempt", "idempotency_key", key, "error", err)
	}

	if err := m.carts.Clear(ctx, sessionID); err != nil {
		slog.Error("failed to clear cart after checkout", "session_id", sessionID, "error", err)
	}

	m.tracker.TrackPurchase(ctx, sessionID, order.ID, order.TotalPaisa, req.Consent)

	slog.Info("order placed", "order_id", order.ID, "session_id", sessionID, "items", len(items))
	return order, nil
}

// idempotencyKey returns the session's pending attempt key, minting a
// new one only when no failed attempt is waiting to be retried.
func (m *Manager) idempotencyKey(ctx context.Context, sessionID string) (string, error) {
	pending, err := m.queries.GetPendingCheckoutAttempt(ctx, sessionID)
	if err == nil {
		return pending.IdempotencyKey, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("load checkout attempt: %w", err)
	}

	key := ulid.Make().String()
	if err := m.queries.CreateCheckoutAttempt(ctx, key, sessionID); err != nil {
		return "", fmt.Errorf("record checkout attempt: %w", err)
	}
	return key, nil
}

func toOrderItems(items []cart.LineItem) []backend.OrderItem {
	out := make([]backend.OrderItem, 0, len(items))
	for _, li := range items {
		id := li.ID
		if id == "" {
			id = li.LegacyID
		}
		out = append(out, backend.OrderItem{
			ProductID:       id,
			Title:           li.Title,
			Image:           li.Image,
			PricePaisa:      li.PricePaisa,
			Quantity:        li.Quantity,
			SelectedOptions: li.SelectedOptions,
		})
	}
	return out
}
