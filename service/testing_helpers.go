package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yourease/storefront/storage"
)

// setupTestEcho wires the full route table against an in-memory
// database and a stub upstream API.
func setupTestEcho(t *testing.T) (*echo.Echo, *Service) {
	t.Helper()

	store, cleanup, err := storage.NewTestStorage()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(cleanup)

	// Stub upstream: collections decode from an empty list, single
	// resources from an empty object.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasPrefix(r.URL.Path, "/api/products/") {
			w.Write([]byte(`{}`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(upstream.Close)

	config := &Config{
		Environment: "test",
		Port:        "8080",
	}
	config.Session.Secret = "test-secret"
	config.Backend.URL = upstream.URL
	config.Backend.Timeout = 5 * time.Second

	svc := New(store, config)

	e := echo.New()
	e.HideBanner = true
	svc.RegisterRoutes(e)

	return e, svc
}
