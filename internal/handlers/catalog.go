package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yourease/storefront/internal/analytics"
	"github.com/yourease/storefront/internal/backend"
	"github.com/yourease/storefront/internal/catalog"
	"github.com/yourease/storefront/internal/session"
)

type CatalogHandler struct {
	catalog *catalog.Service
	backend *backend.Client
	tracker *analytics.Tracker
}

func NewCatalogHandler(catalogService *catalog.Service, backendClient *backend.Client, tracker *analytics.Tracker) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalogService,
		backend: backendClient,
		tracker: tracker,
	}
}

// HandleListProducts browses the catalog with filters and sort.
func (h *CatalogHandler) HandleListProducts(c echo.Context) error {
	sess := session.FromContext(c)
	ctx := c.Request().Context()

	params := catalog.BrowseParams{
		Category:      c.QueryParam("category"),
		Keyword:       c.QueryParam("keyword"),
		Sort:          c.QueryParam("sort"),
		InStockOnly:   c.QueryParam("in_stock") == "true",
		MinPricePaisa: queryInt64(c, "min_price"),
		MaxPricePaisa: queryInt64(c, "max_price"),
		Page:          queryInt64(c, "page"),
	}

	products, err := h.catalog.Browse(ctx, params)
	if err != nil {
		slog.Error("failed to browse products", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to load products")
	}

	if params.Keyword != "" {
		h.catalog.RecordSearch(ctx, sess.ID, params.Keyword)
	}
	return c.JSON(http.StatusOK, products)
}

// HandleGetProduct returns one product and fires the de-duplicated
// view_item event.
func (h *CatalogHandler) HandleGetProduct(c echo.Context) error {
	sess := session.FromContext(c)
	productID := c.Param("id")

	product, err := h.backend.GetProduct(c.Request().Context(), productID)
	if err != nil {
		slog.Info("product not found", "product_id", productID, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}

	h.tracker.TrackProductView(c.Request().Context(), sess.ID, productID, sess.AnalyticsConsent)
	return c.JSON(http.StatusOK, product)
}

// HandleListCategories lists categories through the cache.
func (h *CatalogHandler) HandleListCategories(c echo.Context) error {
	categories, err := h.catalog.Categories(c.Request().Context())
	if err != nil {
		slog.Error("failed to fetch categories", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to load categories")
	}
	return c.JSON(http.StatusOK, categories)
}

// HandleSearchSuggest returns title suggestions for a partial query.
func (h *CatalogHandler) HandleSearchSuggest(c echo.Context) error {
	suggestions, err := h.catalog.Suggest(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		slog.Error("failed to build suggestions", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to load suggestions")
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	return c.JSON(http.StatusOK, suggestions)
}

// HandleRecentSearches returns the session's search history.
func (h *CatalogHandler) HandleRecentSearches(c echo.Context) error {
	sess := session.FromContext(c)

	searches, err := h.catalog.RecentSearches(c.Request().Context(), sess.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load recent searches")
	}
	if searches == nil {
		searches = []string{}
	}
	return c.JSON(http.StatusOK, searches)
}

// HandleListBanners returns the active storefront banners.
func (h *CatalogHandler) HandleListBanners(c echo.Context) error {
	banners, err := h.backend.ListBanners(c.Request().Context())
	if err != nil {
		slog.Error("failed to fetch banners", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to load banners")
	}
	return c.JSON(http.StatusOK, banners)
}

// HandleListReviews returns a product's reviews.
func (h *CatalogHandler) HandleListReviews(c echo.Context) error {
	reviews, err := h.backend.ListReviews(c.Request().Context(), c.Param("id"))
	if err != nil {
		slog.Error("failed to fetch reviews", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to load reviews")
	}
	return c.JSON(http.StatusOK, reviews)
}

func queryInt64(c echo.Context, name string) int64 {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
