package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yourease/storefront/internal/analytics"
	"github.com/yourease/storefront/internal/session"
)

type AnalyticsHandler struct {
	tracker  *analytics.Tracker
	sessions *session.Manager
}

func NewAnalyticsHandler(tracker *analytics.Tracker, sessions *session.Manager) *AnalyticsHandler {
	return &AnalyticsHandler{
		tracker:  tracker,
		sessions: sessions,
	}
}

// ConsentRequest toggles analytics collection for the session.
type ConsentRequest struct {
	Consent bool `json:"consent"`
}

// HandleSetConsent records the shopper's analytics choice. Revoking
// consent also forgets the session's sent-event fingerprints.
func (h *AnalyticsHandler) HandleSetConsent(c echo.Context) error {
	sess := session.FromContext(c)

	var req ConsentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	sess.AnalyticsConsent = req.Consent
	if !req.Consent {
		h.tracker.EndSession(sess.ID)
	}
	if err := h.sessions.Save(c, sess); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Session error")
	}
	return c.JSON(http.StatusOK, map[string]bool{"consent": req.Consent})
}

// PageViewRequest is a client-reported page view.
type PageViewRequest struct {
	Path string `json:"path"`
}

// HandlePageView fires a de-duplicated page_view for the given path.
// Duplicate hits inside the same hour bucket report sent=false.
func (h *AnalyticsHandler) HandlePageView(c echo.Context) error {
	sess := session.FromContext(c)

	var req PageViewRequest
	if err := c.Bind(&req); err != nil || req.Path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "path is required")
	}

	sent := h.tracker.TrackPageView(c.Request().Context(), sess.ID, req.Path, sess.AnalyticsConsent)
	return c.JSON(http.StatusOK, map[string]bool{"sent": sent})
}
