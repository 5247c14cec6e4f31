package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type OrderItem struct {
	ProductID       string            `json:"product_id"`
	Title           string            `json:"title"`
	Image           string            `json:"image,omitempty"`
	PricePaisa      int64             `json:"price_paisa"`
	Quantity        int64             `json:"quantity"`
	SelectedOptions map[string]string `json:"selected_options,omitempty"`
}

type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country,omitempty"`
}

// CreateOrderRequest is the order-creation payload. Selected options
// per line item are carried through verbatim from the cart.
type CreateOrderRequest struct {
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	SubtotalPaisa   int64           `json:"subtotal_paisa"`
	GuestEmail      string          `json:"guest_email,omitempty"`
}

type Order struct {
	ID              string          `json:"id"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	SubtotalPaisa   int64           `json:"subtotal_paisa"`
	TotalPaisa      int64           `json:"total_paisa"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CreateOrder posts a new order. The idempotency key rides in a header
// so a resubmission after a lost response cannot double-create on a
// backend that honors it.
func (c *Client) CreateOrder(ctx context.Context, token, idempotencyKey string, req CreateOrderRequest) (*Order, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", idempotencyKey)
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &order, nil
}

func (c *Client) ListMyOrders(ctx context.Context, token string) ([]Order, error) {
	var orders []Order
	if err := c.doJSON(ctx, http.MethodGet, "/api/orders/myorders", token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, token, orderID string) (*Order, error) {
	var order Order
	if err := c.doJSON(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(orderID), token, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) CancelOrder(ctx context.Context, token, orderID string) (*Order, error) {
	var order Order
	if err := c.doJSON(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(orderID)+"/cancel", token, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// LookupGuestOrder fetches an order placed without an account, keyed
// by order id plus the guest's email.
func (c *Client) LookupGuestOrder(ctx context.Context, orderID, email string) (*Order, error) {
	values := url.Values{}
	values.Set("order_id", orderID)
	values.Set("email", email)

	var order Order
	if err := c.doJSON(ctx, http.MethodGet, "/api/orders/guest-lookup?"+values.Encode(), "", nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

type Address struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country,omitempty"`
	IsDefault  bool   `json:"is_default"`
}

func (c *Client) ListAddresses(ctx context.Context, token string) ([]Address, error) {
	var addresses []Address
	if err := c.doJSON(ctx, http.MethodGet, "/api/addresses", token, nil, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (c *Client) CreateAddress(ctx context.Context, token string, addr Address) (*Address, error) {
	var created Address
	if err := c.doJSON(ctx, http.MethodPost, "/api/addresses", token, addr, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// PaymentMethod describes an upstream payment option. This build ships
// cash on delivery only; the list endpoint exists for parity with the
// upstream contract.
type PaymentMethod struct {
	Code    string `json:"code"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

func (c *Client) ListPaymentMethods(ctx context.Context) ([]PaymentMethod, error) {
	var methods []PaymentMethod
	if err := c.doJSON(ctx, http.MethodGet, "/api/payments/methods", "", nil, &methods); err != nil {
		return nil, err
	}
	return methods, nil
}
