package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yourease/storefront/internal/analytics"
	"github.com/yourease/storefront/internal/backend"
	"github.com/yourease/storefront/internal/session"
	"github.com/yourease/storefront/internal/whatsapp"
)

type AccountHandler struct {
	backend  *backend.Client
	sessions *session.Manager
	tracker  *analytics.Tracker
	whatsapp *whatsapp.Builder
}

func NewAccountHandler(backendClient *backend.Client, sessions *session.Manager, tracker *analytics.Tracker, whatsappBuilder *whatsapp.Builder) *AccountHandler {
	return &AccountHandler{
		backend:  backendClient,
		sessions: sessions,
		tracker:  tracker,
		whatsapp: whatsappBuilder,
	}
}

// upstreamError maps a backend failure onto the response: client
// errors pass through, everything else is a bad gateway.
func upstreamError(err error, fallback string) error {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return echo.NewHTTPError(apiErr.StatusCode, apiErr.Message)
	}
	return echo.NewHTTPError(http.StatusBadGateway, fallback)
}

// HandleRegister creates an account upstream and logs the session in.
func (h *AccountHandler) HandleRegister(c echo.Context) error {
	var req backend.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	auth, err := h.backend.Register(c.Request().Context(), req)
	if err != nil {
		return upstreamError(err, "Registration failed")
	}
	return h.loginSession(c, auth)
}

// HandleLogin authenticates upstream and stores the bearer token in
// the cookie session.
func (h *AccountHandler) HandleLogin(c echo.Context) error {
	var req backend.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	auth, err := h.backend.Login(c.Request().Context(), req)
	if err != nil {
		return upstreamError(err, "Login failed")
	}
	return h.loginSession(c, auth)
}

func (h *AccountHandler) loginSession(c echo.Context, auth *backend.AuthResponse) error {
	sess := session.FromContext(c)
	sess.Token = auth.Token
	sess.UserName = auth.User.Name
	sess.UserEmail = auth.User.Email
	sess.IsAdmin = auth.User.IsAdmin

	if err := h.sessions.Save(c, sess); err != nil {
		slog.Error("failed to save session after login", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Session error")
	}
	return c.JSON(http.StatusOK, auth.User)
}

// HandleLogout drops the session, its cart association and its
// analytics fingerprint set.
func (h *AccountHandler) HandleLogout(c echo.Context) error {
	sess := session.FromContext(c)
	h.tracker.EndSession(sess.ID)

	if err := h.sessions.Destroy(c); err != nil {
		slog.Warn("failed to destroy session", "error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func requireAuth(c echo.Context) (*session.Data, error) {
	sess := session.FromContext(c)
	if !sess.Authenticated() {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Login required")
	}
	return sess, nil
}

// HandleGetProfile returns the logged-in user's profile.
func (h *AccountHandler) HandleGetProfile(c echo.Context) error {
	sess, err := requireAuth(c)
	if err != nil {
		return err
	}

	user, err := h.backend.GetAuthProfile(c.Request().Context(), sess.Token)
	if err != nil {
		return upstreamError(err, "Failed to load profile")
	}
	return c.JSON(http.StatusOK, user)
}

// HandleUpdateProfile updates name/phone/password upstream.
func (h *AccountHandler) HandleUpdateProfile(c echo.Context) error {
	sess, err := requireAuth(c)
	if err != nil {
		return err
	}

	var update backend.ProfileUpdate
	if err := c.Bind(&update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	user, err := h.backend.UpdateProfile(c.Request().Context(), sess.Token, update)
	if err != nil {
		return upstreamError(err, "Failed to update profile")
	}
	return c.JSON(http.StatusOK, user)
}

// HandleUpdatePreferences updates notification preferences upstream.
func (h *AccountHandler) HandleUpdatePreferences(c echo.Context) error {
	sess, err := requireAuth(c)
	if err != nil {
		return err
	}

	var prefs backend.Preferences
	if err := c.Bind(&prefs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := h.backend.UpdatePreferences(c.Request().Context(), sess.Token, prefs); err != nil {
		return upstreamError(err, "Failed to update preferences")
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleDashboard returns the account overview block.
func (h *AccountHandler) HandleDashboard(c echo.Context) error {
	sess, err := requireAuth(c)
	if err != nil {
		return err
	}

	dash, err := h.backend.GetUserDashboard(c.Request().Context(), sess.Token)
	if err != nil {
		return upstreamError(err, "Failed to load dashboard")
	}
	return c.JSON(http.StatusOK, dash)
}

// HandleListMyOrders returns the user's order history.
func (h *AccountHandler) HandleListMyOrders(c echo.Context) error {
	sess, err := requireAuth(c)
	if err != nil {
		return err
	}

	orders, err := h.backend.ListMyOrders(c.Request().Context(), sess.Token)
	if err != nil {
		return upstreamError(err, "Failed to load orders")
	}
	return c.JSON(http.StatusOK, orders)
}

// HandleGetOrder returns one order for tracking.
func (h *AccountHandler) HandleGetOrder(c echo.Context) error {
	sess, err := requireAuth(c)
	if err != nil {
		return err
	}

	order, err := h.backend.GetOrder(c.Request().Context(), sess.Token, c.Param("id"))
	if err != nil {
		return upstreamError(err, "Failed to load order")
	}
	return c.JSON(http.StatusOK, order)
}

// HandleCancelOrder cancels an order upstream.
func (h *AccountHandler) HandleCancelOrder(c echo.Context) error {
	sess, err := requireAuth(c)
	if err != nil {
		return err
	}

	order, err := h.backend.CancelOrder(c.Request().Context(), sess.Token, c.Param("id"))
	if err != nil {
		return upstreamError(err, "Failed to cancel order")
	}
	return c.JSON(http.StatusOK, order)
}

// HandleGuestOrderLookup fetches an order by id + guest email, no
// login needed.
func (h *AccountHandler) HandleGuestOrderLookup(c echo.Context) error {
	orderID := c.QueryParam("order_id")
	email := c.QueryParam("email")
	if orderID == "" || email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "order_id and email are required")
	}

	order, err := h.backend.LookupGuestOrder(c.Request().Context(), orderID, email)
	if err != nil {
		return upstreamError(err, "Order not found")
	}
	return c.JSON(http.StatusOK, order)
}

// HandleOrderWhatsApp returns the click-to-chat link for an order, or
// the QR PNG when format=qr.
func (h *AccountHandler) HandleOrderWhatsApp(c echo.Context) error {
	sess, err := requireAuth(c)
	if err != nil {
		return err
	}
	if !h.whatsapp.IsConfigured() {
		return echo.NewHTTPError(http.StatusNotFound, "WhatsApp contact is not configured")
	}

	order, err := h.backend.GetOrder(c.Request().Context(), sess.Token, c.Param("id"))
	if err != nil {
		return upstreamError(err, "Failed to load order")
	}

	if c.QueryParam("format") == "qr" {
		size, _ := strconv.Atoi(c.QueryParam("size"))
		png, err := h.whatsapp.OrderLinkQR(order, size)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render QR code")
		}
		return c.Blob(http.StatusOK, "image/png", png)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"link": h.whatsapp.OrderLink(order),
		"text": whatsapp.OrderText(order),
	})
}

// HandleListAddresses returns the user's saved addresses.
func (h *AccountHandler) HandleListAddresses(c echo.Context) error {
	sess, err := requireAuth(c)
	if err != nil {
		return err
	}

	addresses, err := h.backend.ListAddresses(c.Request().Context(), sess.Token)
	if err != nil {
		return upstreamError(err, "Failed to load addresses")
	}
	return c.JSON(http.StatusOK, addresses)
}

// HandleCreateAddress saves a new address upstream.
func (h *AccountHandler) HandleCreateAddress(c echo.Context) error {
	sess, err := requireAuth(c)
	if err != nil {
		return err
	}

	var addr backend.Address
	if err := c.Bind(&addr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	created, err := h.backend.CreateAddress(c.Request().Context(), sess.Token, addr)
	if err != nil {
		return upstreamError(err, "Failed to save address")
	}
	return c.JSON(http.StatusCreated, created)
}

// HandleListWishlist returns the user's wishlist.
func (h *AccountHandler) HandleListWishlist(c echo.Context) error {
	sess, err := requireAuth(c)
	if err != nil {
		return err
	}

	items, err := h.backend.ListWishlist(c.Request().Context(), sess.Token)
	if err != nil {
		return upstreamError(err, "Failed to load wishlist")
	}
	return c.JSON(http.StatusOK, items)
}

// HandleAddToWishlist adds a product to the wishlist.
func (h *AccountHandler) HandleAddToWishlist(c echo.Context) error {
	sess, err := requireAuth(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil || req.ProductID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is required")
	}

	if err := h.backend.AddToWishlist(c.Request().Context(), sess.Token, req.ProductID); err != nil {
		return upstreamError(err, "Failed to update wishlist")
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleRemoveFromWishlist removes a product from the wishlist.
func (h *AccountHandler) HandleRemoveFromWishlist(c echo.Context) error {
	sess, err := requireAuth(c)
	if err != nil {
		return err
	}

	if err := h.backend.RemoveFromWishlist(c.Request().Context(), sess.Token, c.Param("id")); err != nil {
		return upstreamError(err, "Failed to update wishlist")
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleCreateReview passes a review with its media files through to
// the upstream uploader.
func (h *AccountHandler) HandleCreateReview(c echo.Context) error {
	sess, err := requireAuth(c)
	if err != nil {
		return err
	}

	rating, err := strconv.ParseInt(c.FormValue("rating"), 10, 64)
	if err != nil || rating < 1 || rating > 5 {
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}
	comment := c.FormValue("comment")

	var media []backend.ReviewMedia
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, header := range form.File["media"] {
			file, err := header.Open()
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "Unreadable media upload")
			}
			defer file.Close()
			media = append(media, backend.ReviewMedia{Filename: header.Filename, Content: file})
		}
	}

	review, err := h.backend.CreateReview(c.Request().Context(), sess.Token, c.Param("id"), rating, comment, media)
	if err != nil {
		return upstreamError(err, "Failed to submit review")
	}
	return c.JSON(http.StatusCreated, review)
}
