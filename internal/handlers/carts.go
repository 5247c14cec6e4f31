package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yourease/storefront/internal/cart"
	"github.com/yourease/storefront/internal/session"
	"github.com/yourease/storefront/storage"
)

type CartHandler struct {
	carts *storage.CartStore
}

func NewCartHandler(carts *storage.CartStore) *CartHandler {
	return &CartHandler{
		carts: carts,
	}
}

// CartResponse is the cart plus its derived totals. Totals are
// recomputed from the live list on every read, never stored.
type CartResponse struct {
	Items         []cart.LineItem `json:"items"`
	SubtotalPaisa int64           `json:"subtotal_paisa"`
	ItemCount     int64           `json:"item_count"`
}

func newCartResponse(items []cart.LineItem) CartResponse {
	if items == nil {
		items = []cart.LineItem{}
	}
	return CartResponse{
		Items:         items,
		SubtotalPaisa: cart.SubtotalPaisa(items),
		ItemCount:     cart.ItemCount(items),
	}
}

// HandleGetCart returns the session's cart with derived totals.
func (h *CartHandler) HandleGetCart(c echo.Context) error {
	sess := session.FromContext(c)

	items, err := h.carts.Get(c.Request().Context(), sess.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load cart")
	}
	return c.JSON(http.StatusOK, newCartResponse(items))
}

// AddToCartRequest is the candidate line item for a merge-by-identity
// add. Quantity defaults to 1.
type AddToCartRequest struct {
	ID              string            `json:"id"`
	LegacyID        string            `json:"_id,omitempty"`
	Title           string            `json:"title"`
	Image           string            `json:"image,omitempty"`
	PricePaisa      int64             `json:"price_paisa"`
	Quantity        int64             `json:"quantity"`
	CountInStock    int64             `json:"count_in_stock,omitempty"`
	SelectedOptions map[string]string `json:"selected_options,omitempty"`
}

// HandleAddToCart merges the candidate into the session's cart and
// writes the new list through to storage.
func (h *CartHandler) HandleAddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	sess := session.FromContext(c)

	var req AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	items, err := h.carts.Get(ctx, sess.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load cart")
	}

	items = cart.AddItem(items, cart.LineItem{
		ID:              req.ID,
		LegacyID:        req.LegacyID,
		Title:           req.Title,
		Image:           req.Image,
		PricePaisa:      req.PricePaisa,
		Quantity:        req.Quantity,
		CountInStock:    req.CountInStock,
		SelectedOptions: req.SelectedOptions,
	})

	if err := h.carts.Save(ctx, sess.ID, items); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save cart")
	}
	return c.JSON(http.StatusOK, newCartResponse(items))
}

// UpdateCartItemRequest sets a line's quantity; below 1 removes it.
type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

// HandleUpdateCartItem changes one line's quantity.
func (h *CartHandler) HandleUpdateCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	sess := session.FromContext(c)
	itemID := c.Param("id")

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	items, err := h.carts.Get(ctx, sess.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load cart")
	}

	items = cart.UpdateQuantity(items, itemID, req.Quantity)

	if err := h.carts.Save(ctx, sess.ID, items); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save cart")
	}
	return c.JSON(http.StatusOK, newCartResponse(items))
}

// HandleRemoveFromCart deletes a line item.
func (h *CartHandler) HandleRemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	sess := session.FromContext(c)
	itemID := c.Param("id")

	items, err := h.carts.Get(ctx, sess.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load cart")
	}

	items = cart.RemoveItem(items, itemID)

	if err := h.carts.Save(ctx, sess.ID, items); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save cart")
	}
	return c.JSON(http.StatusOK, newCartResponse(items))
}

// HandleClearCart empties the session's cart.
func (h *CartHandler) HandleClearCart(c echo.Context) error {
	sess := session.FromContext(c)

	if err := h.carts.Clear(c.Request().Context(), sess.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to clear cart")
	}
	return c.JSON(http.StatusOK, newCartResponse(nil))
}
