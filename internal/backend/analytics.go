package backend

import (
	"context"
	"net/http"
	"time"
)

// TrackEventRequest mirrors the upstream /api/analytics/track payload.
type TrackEventRequest struct {
	EventType string            `json:"event_type"`
	SubjectID string            `json:"subject_id,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func (c *Client) TrackEvent(ctx context.Context, token string, event TrackEventRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/api/analytics/track", token, event, nil)
}

// AnalyticsDashboard is the admin analytics overview.
type AnalyticsDashboard struct {
	PageViews    int64            `json:"page_views"`
	ProductViews int64            `json:"product_views"`
	Purchases    int64            `json:"purchases"`
	RevenuePaisa int64            `json:"revenue_paisa"`
	TopProducts  []Product        `json:"top_products"`
	ViewsByDay   map[string]int64 `json:"views_by_day"`
}

func (c *Client) GetAnalyticsDashboard(ctx context.Context, token string) (*AnalyticsDashboard, error) {
	var dash AnalyticsDashboard
	if err := c.doJSON(ctx, http.MethodGet, "/api/analytics/dashboard", token, nil, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}

// RealtimeStats is the live visitor snapshot.
type RealtimeStats struct {
	ActiveVisitors int64            `json:"active_visitors"`
	ActiveCarts    int64            `json:"active_carts"`
	EventsPerMin   int64            `json:"events_per_minute"`
	TopPages       map[string]int64 `json:"top_pages"`
}

func (c *Client) GetRealtimeStats(ctx context.Context, token string) (*RealtimeStats, error) {
	var stats RealtimeStats
	if err := c.doJSON(ctx, http.MethodGet, "/api/analytics/realtime", token, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
