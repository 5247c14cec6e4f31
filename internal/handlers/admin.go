package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/yourease/storefront/internal/backend"
	"github.com/yourease/storefront/internal/cart"
	"github.com/yourease/storefront/internal/catalog"
	"github.com/yourease/storefront/internal/session"
	"github.com/yourease/storefront/storage"
)

type AdminHandler struct {
	backend *backend.Client
	catalog *catalog.Service
	queries *storage.Queries
}

func NewAdminHandler(backendClient *backend.Client, catalogService *catalog.Service, queries *storage.Queries) *AdminHandler {
	return &AdminHandler{
		backend: backendClient,
		catalog: catalogService,
		queries: queries,
	}
}

// RequireAdmin gates the admin console routes on the session flag.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess := session.FromContext(c)
		if !sess.Authenticated() {
			return echo.NewHTTPError(http.StatusUnauthorized, "Login required")
		}
		if !sess.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
		}
		return next(c)
	}
}

// HandleListSales lists sale campaigns.
func (h *AdminHandler) HandleListSales(c echo.Context) error {
	sess := session.FromContext(c)

	sales, err := h.backend.ListSaleCampaigns(c.Request().Context(), sess.Token)
	if err != nil {
		return upstreamError(err, "Failed to load sale campaigns")
	}
	return c.JSON(http.StatusOK, sales)
}

// HandleCreateSale creates a campaign and drops the catalog cache so
// discounted prices show up immediately.
func (h *AdminHandler) HandleCreateSale(c echo.Context) error {
	sess := session.FromContext(c)

	var sale backend.SaleCampaign
	if err := c.Bind(&sale); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if sale.Name == "" || sale.DiscountPercent < 1 || sale.DiscountPercent > 90 {
		return echo.NewHTTPError(http.StatusBadRequest, "Name and a discount between 1 and 90 percent are required")
	}
	if !sale.EndsAt.After(sale.StartsAt) {
		return echo.NewHTTPError(http.StatusBadRequest, "Campaign must end after it starts")
	}

	created, err := h.backend.CreateSaleCampaign(c.Request().Context(), sess.Token, sale)
	if err != nil {
		return upstreamError(err, "Failed to create sale campaign")
	}

	h.catalog.InvalidateCache()
	return c.JSON(http.StatusCreated, created)
}

// HandleUpdateSale edits a campaign.
func (h *AdminHandler) HandleUpdateSale(c echo.Context) error {
	sess := session.FromContext(c)

	var sale backend.SaleCampaign
	if err := c.Bind(&sale); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	sale.ID = c.Param("id")

	updated, err := h.backend.UpdateSaleCampaign(c.Request().Context(), sess.Token, sale)
	if err != nil {
		return upstreamError(err, "Failed to update sale campaign")
	}

	h.catalog.InvalidateCache()
	return c.JSON(http.StatusOK, updated)
}

// HandleDeleteSale removes a campaign.
func (h *AdminHandler) HandleDeleteSale(c echo.Context) error {
	sess := session.FromContext(c)

	if err := h.backend.DeleteSaleCampaign(c.Request().Context(), sess.Token, c.Param("id")); err != nil {
		return upstreamError(err, "Failed to delete sale campaign")
	}

	h.catalog.InvalidateCache()
	return c.NoContent(http.StatusNoContent)
}

// HandleListAllOrders lists orders for the admin console, optionally
// filtered by status.
func (h *AdminHandler) HandleListAllOrders(c echo.Context) error {
	sess := session.FromContext(c)

	orders, err := h.backend.ListAllOrders(c.Request().Context(), sess.Token, c.QueryParam("status"))
	if err != nil {
		return upstreamError(err, "Failed to load orders")
	}
	return c.JSON(http.StatusOK, orders)
}

var orderStatuses = map[string]bool{
	"pending":   true,
	"confirmed": true,
	"shipped":   true,
	"delivered": true,
	"cancelled": true,
}

// HandleUpdateOrderStatus moves an order through fulfillment.
func (h *AdminHandler) HandleUpdateOrderStatus(c echo.Context) error {
	sess := session.FromContext(c)

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil || !orderStatuses[req.Status] {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown order status")
	}

	order, err := h.backend.UpdateOrderStatus(c.Request().Context(), sess.Token, c.Param("id"), req.Status)
	if err != nil {
		return upstreamError(err, "Failed to update order status")
	}
	return c.JSON(http.StatusOK, order)
}

// AnalyticsOverview combines the historical dashboard with the live
// snapshot into one admin payload.
type AnalyticsOverview struct {
	Dashboard *backend.AnalyticsDashboard `json:"dashboard"`
	Realtime  *backend.RealtimeStats      `json:"realtime"`
}

// HandleAnalyticsDashboard fetches both analytics views concurrently.
func (h *AdminHandler) HandleAnalyticsDashboard(c echo.Context) error {
	sess := session.FromContext(c)

	var overview AnalyticsOverview
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		dash, err := h.backend.GetAnalyticsDashboard(ctx, sess.Token)
		overview.Dashboard = dash
		return err
	})
	g.Go(func() error {
		stats, err := h.backend.GetRealtimeStats(ctx, sess.Token)
		overview.Realtime = stats
		return err
	})
	if err := g.Wait(); err != nil {
		return upstreamError(err, "Failed to load analytics")
	}
	return c.JSON(http.StatusOK, overview)
}

// HandleListBanners lists all banners including inactive ones.
func (h *AdminHandler) HandleListBanners(c echo.Context) error {
	banners, err := h.backend.ListBanners(c.Request().Context())
	if err != nil {
		return upstreamError(err, "Failed to load banners")
	}
	return c.JSON(http.StatusOK, banners)
}

// HandleCreateBanner adds a storefront banner.
func (h *AdminHandler) HandleCreateBanner(c echo.Context) error {
	sess := session.FromContext(c)

	var banner backend.Banner
	if err := c.Bind(&banner); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if banner.Title == "" || banner.Image == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title and image are required")
	}

	created, err := h.backend.CreateBanner(c.Request().Context(), sess.Token, banner)
	if err != nil {
		return upstreamError(err, "Failed to create banner")
	}
	return c.JSON(http.StatusCreated, created)
}

// HandleUpdateBanner edits a banner.
func (h *AdminHandler) HandleUpdateBanner(c echo.Context) error {
	sess := session.FromContext(c)

	var banner backend.Banner
	if err := c.Bind(&banner); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	banner.ID = c.Param("id")

	updated, err := h.backend.UpdateBanner(c.Request().Context(), sess.Token, banner)
	if err != nil {
		return upstreamError(err, "Failed to update banner")
	}
	return c.JSON(http.StatusOK, updated)
}

// HandleDeleteBanner removes a banner.
func (h *AdminHandler) HandleDeleteBanner(c echo.Context) error {
	sess := session.FromContext(c)

	if err := h.backend.DeleteBanner(c.Request().Context(), sess.Token, c.Param("id")); err != nil {
		return upstreamError(err, "Failed to delete banner")
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminCartView is one locally stored cart with decoded items and
// derived totals.
type AdminCartView struct {
	SessionID     string          `json:"session_id"`
	Items         []cart.LineItem `json:"items"`
	SubtotalPaisa int64           `json:"subtotal_paisa"`
	ItemCount     int64           `json:"item_count"`
	UpdatedAt     string          `json:"updated_at"`
}

// HandleListCarts surfaces the locally stored carts so staff can see
// what shoppers are holding.
func (h *AdminHandler) HandleListCarts(c echo.Context) error {
	limit, err := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if err != nil || limit < 1 || limit > 200 {
		limit = 50
	}

	rows, err := h.queries.ListCarts(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load carts")
	}

	views := make([]AdminCartView, 0, len(rows))
	for _, row := range rows {
		var items []cart.LineItem
		if err := json.Unmarshal([]byte(row.ItemsJSON), &items); err != nil {
			slog.Warn("skipping cart with undecodable payload", "session_id", row.SessionID)
			continue
		}
		views = append(views, AdminCartView{
			SessionID:     row.SessionID,
			Items:         items,
			SubtotalPaisa: cart.SubtotalPaisa(items),
			ItemCount:     cart.ItemCount(items),
			UpdatedAt:     row.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	return c.JSON(http.StatusOK, views)
}

// HandleCartMetrics reports active versus abandoned cart counts.
func (h *AdminHandler) HandleCartMetrics(c echo.Context) error {
	metrics, err := h.queries.GetCartMetrics(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load cart metrics")
	}
	return c.JSON(http.StatusOK, map[string]int64{
		"total_carts":     metrics.TotalCarts,
		"active_carts":    metrics.ActiveCount,
		"abandoned_carts": metrics.AbandonedCount,
	})
}
