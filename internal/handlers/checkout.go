package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yourease/storefront/internal/backend"
	"github.com/yourease/storefront/internal/checkout"
	"github.com/yourease/storefront/internal/session"
)

type CheckoutHandler struct {
	manager *checkout.Manager
}

func NewCheckoutHandler(manager *checkout.Manager) *CheckoutHandler {
	return &CheckoutHandler{
		manager: manager,
	}
}

// HandleGetCheckout enters the Filling state. With an empty cart it
// returns the empty-state payload instead; the form never renders.
func (h *CheckoutHandler) HandleGetCheckout(c echo.Context) error {
	sess := session.FromContext(c)

	draft, err := h.manager.Begin(c.Request().Context(), sess.ID, sess.Token)
	if errors.Is(err, checkout.ErrEmptyCart) {
		return c.JSON(http.StatusOK, map[string]any{
			"state": checkout.StateEmpty,
		})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to start checkout")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"state": checkout.StateFilling,
		"draft": draft,
	})
}

// HandleCheckoutState reports the session's current checkout state.
func (h *CheckoutHandler) HandleCheckoutState(c echo.Context) error {
	sess := session.FromContext(c)

	state, err := h.manager.State(c.Request().Context(), sess.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read checkout state")
	}
	return c.JSON(http.StatusOK, map[string]any{"state": state})
}

// HandlePaymentMethods lists the upstream payment options shown on
// the checkout form.
func (h *CheckoutHandler) HandlePaymentMethods(c echo.Context) error {
	methods, err := h.manager.PaymentMethods(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to load payment methods")
	}
	return c.JSON(http.StatusOK, methods)
}

// SubmitCheckoutRequest is the address form. GuestEmail is required
// only for sessions without a login.
type SubmitCheckoutRequest struct {
	Address    backend.ShippingAddress `json:"address"`
	GuestEmail string                  `json:"guest_email,omitempty"`
}

// HandleSubmitCheckout places the order. Failures leave the cart
// untouched and the session back in Filling.
func (h *CheckoutHandler) HandleSubmitCheckout(c echo.Context) error {
	sess := session.FromContext(c)

	var req SubmitCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Address.FullName == "" || req.Address.Line1 == "" || req.Address.City == "" || req.Address.PostalCode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Shipping address is incomplete")
	}
	if !sess.Authenticated() && req.GuestEmail == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email is required for guest checkout")
	}

	order, err := h.manager.Submit(c.Request().Context(), sess.ID, checkout.SubmitRequest{
		Address:    req.Address,
		Token:      sess.Token,
		GuestEmail: req.GuestEmail,
		Consent:    sess.AnalyticsConsent,
	})
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		return echo.NewHTTPError(http.StatusBadRequest, "Cart is empty")
	case errors.Is(err, checkout.ErrSubmitInFlight):
		return echo.NewHTTPError(http.StatusConflict, "Checkout already in progress")
	case err != nil:
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return echo.NewHTTPError(apiErr.StatusCode, apiErr.Message)
		}
		return echo.NewHTTPError(http.StatusBadGateway, "Order could not be placed")
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"state": checkout.StateSucceeded,
		"order": order,
	})
}
