package service

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yourease/storefront/internal/analytics"
	"github.com/yourease/storefront/internal/backend"
	"github.com/yourease/storefront/internal/catalog"
	"github.com/yourease/storefront/internal/checkout"
	"github.com/yourease/storefront/internal/handlers"
	"github.com/yourease/storefront/internal/session"
	"github.com/yourease/storefront/internal/whatsapp"
	"github.com/yourease/storefront/storage"
)

type Service struct {
	storage  *storage.Storage
	config   *Config
	sessions *session.Manager

	cartHandler      *handlers.CartHandler
	checkoutHandler  *handlers.CheckoutHandler
	catalogHandler   *handlers.CatalogHandler
	accountHandler   *handlers.AccountHandler
	adminHandler     *handlers.AdminHandler
	analyticsHandler *handlers.AnalyticsHandler
}

func New(store *storage.Storage, config *Config) *Service {
	sessions := session.NewManager(config.Session.Secret)
	backendClient := backend.NewClient(config.Backend.URL, config.Backend.Timeout)

	ga4 := analytics.NewGA4Client(config.GA4.MeasurementID, config.GA4.APISecret)
	tracker := analytics.NewTracker(ga4, backendClient)

	carts := storage.NewCartStore(store.Queries)
	catalogService := catalog.NewService(backendClient, store.Queries)
	checkoutManager := checkout.NewManager(carts, store.Queries, backendClient, tracker)
	whatsappBuilder := whatsapp.NewBuilder(config.WhatsApp.Number)

	return &Service{
		storage:          store,
		config:           config,
		sessions:         sessions,
		cartHandler:      handlers.NewCartHandler(carts),
		checkoutHandler:  handlers.NewCheckoutHandler(checkoutManager),
		catalogHandler:   handlers.NewCatalogHandler(catalogService, backendClient, tracker),
		accountHandler:   handlers.NewAccountHandler(backendClient, sessions, tracker, whatsappBuilder),
		adminHandler:     handlers.NewAdminHandler(backendClient, catalogService, store.Queries),
		analyticsHandler: handlers.NewAnalyticsHandler(tracker, sessions),
	}
}

func (s *Service) RegisterRoutes(e *echo.Echo) {
	// Health check - no session middleware
	e.GET("/health", s.handleHealth)

	api := e.Group("/api", s.sessions.Middleware())

	// Catalog
	api.GET("/products", s.catalogHandler.HandleListProducts)
	api.GET("/products/:id", s.catalogHandler.HandleGetProduct)
	api.GET("/products/:id/reviews", s.catalogHandler.HandleListReviews)
	api.POST("/products/:id/reviews", s.accountHandler.HandleCreateReview)
	api.GET("/categories", s.catalogHandler.HandleListCategories)
	api.GET("/search/suggest", s.catalogHandler.HandleSearchSuggest)
	api.GET("/search/recent", s.catalogHandler.HandleRecentSearches)
	api.GET("/banners", s.catalogHandler.HandleListBanners)

	// Cart
	api.GET("/cart", s.cartHandler.HandleGetCart)
	api.POST("/cart/items", s.cartHandler.HandleAddToCart)
	api.PUT("/cart/items/:id", s.cartHandler.HandleUpdateCartItem)
	api.DELETE("/cart/items/:id", s.cartHandler.HandleRemoveFromCart)
	api.DELETE("/cart", s.cartHandler.HandleClearCart)

	// Checkout
	api.GET("/checkout", s.checkoutHandler.HandleGetCheckout)
	api.GET("/checkout/state", s.checkoutHandler.HandleCheckoutState)
	api.GET("/checkout/payment-methods", s.checkoutHandler.HandlePaymentMethods)
	api.POST("/checkout", s.checkoutHandler.HandleSubmitCheckout)

	// Auth and account
	api.POST("/auth/register", s.accountHandler.HandleRegister)
	api.POST("/auth/login", s.accountHandler.HandleLogin)
	api.POST("/auth/logout", s.accountHandler.HandleLogout)
	api.GET("/account/profile", s.accountHandler.HandleGetProfile)
	api.PUT("/account/profile", s.accountHandler.HandleUpdateProfile)
	api.PUT("/account/preferences", s.accountHandler.HandleUpdatePreferences)
	api.GET("/account/dashboard", s.accountHandler.HandleDashboard)
	api.GET("/account/addresses", s.accountHandler.HandleListAddresses)
	api.POST("/account/addresses", s.accountHandler.HandleCreateAddress)
	api.GET("/account/wishlist", s.accountHandler.HandleListWishlist)
	api.POST("/account/wishlist", s.accountHandler.HandleAddToWishlist)
	api.DELETE("/account/wishlist/:id", s.accountHandler.HandleRemoveFromWishlist)

	// Orders
	api.GET("/orders", s.accountHandler.HandleListMyOrders)
	api.GET("/orders/lookup", s.accountHandler.HandleGuestOrderLookup)
	api.GET("/orders/:id", s.accountHandler.HandleGetOrder)
	api.POST("/orders/:id/cancel", s.accountHandler.HandleCancelOrder)
	api.GET("/orders/:id/whatsapp", s.accountHandler.HandleOrderWhatsApp)

	// Analytics
	api.POST("/analytics/consent", s.analyticsHandler.HandleSetConsent)
	api.POST("/analytics/page-view", s.analyticsHandler.HandlePageView)

	// Admin console - protected with RequireAdmin middleware
	admin := e.Group("/api/admin", s.sessions.Middleware(), handlers.RequireAdmin)
	admin.GET("/sales", s.adminHandler.HandleListSales)
	admin.POST("/sales", s.adminHandler.HandleCreateSale)
	admin.PUT("/sales/:id", s.adminHandler.HandleUpdateSale)
	admin.DELETE("/sales/:id", s.adminHandler.HandleDeleteSale)
	admin.GET("/orders", s.adminHandler.HandleListAllOrders)
	admin.PUT("/orders/:id/status", s.adminHandler.HandleUpdateOrderStatus)
	admin.GET("/analytics", s.adminHandler.HandleAnalyticsDashboard)
	admin.GET("/banners", s.adminHandler.HandleListBanners)
	admin.POST("/banners", s.adminHandler.HandleCreateBanner)
	admin.PUT("/banners/:id", s.adminHandler.HandleUpdateBanner)
	admin.DELETE("/banners/:id", s.adminHandler.HandleDeleteBanner)
	admin.GET("/carts", s.adminHandler.HandleListCarts)
	admin.GET("/carts/metrics", s.adminHandler.HandleCartMetrics)
}

func (s *Service) handleHealth(c echo.Context) error {
	if err := s.storage.DB().Ping(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
