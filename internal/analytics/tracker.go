package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourease/storefront/internal/backend"
)

// Event names as they appear both in GA4 and the upstream tracker.
const (
	EventPageView    = "page_view"
	EventProductView = "view_item"
	EventPurchase    = "purchase"
)

// Tracker is the de-duplicating front door for all analytics sends.
// Every event passes the consent gate, then the session's fingerprint
// set; survivors go to GA4 and the upstream tracker. Send failures are
// logged and dropped, never retried.
type Tracker struct {
	deduper *Deduper
	ga4     *GA4Client
	backend *backend.Client
}

func NewTracker(ga4 *GA4Client, backendClient *backend.Client) *Tracker {
	return &Tracker{
		deduper: NewDeduper(),
		ga4:     ga4,
		backend: backendClient,
	}
}

// Track sends one event for the session unless an identical event
// already fired this clock hour. Returns true when the event was sent.
func (t *Tracker) Track(ctx context.Context, sessionID, eventType, subjectID string, consent bool, params map[string]string) bool {
	if !consent {
		return false
	}
	if t.deduper.MarkSent(sessionID, eventType, subjectID) {
		slog.Debug("analytics event suppressed as duplicate",
			"event", eventType, "subject", subjectID, "session_id", sessionID)
		return false
	}

	if err := t.ga4.Send(ctx, sessionID, eventType, params); err != nil {
		slog.Warn("ga4 send failed", "event", eventType, "error", err)
	}

	event := backend.TrackEventRequest{
		EventType: eventType,
		SubjectID: subjectID,
		SessionID: sessionID,
		Params:    params,
		Timestamp: time.Now().UTC(),
	}
	if err := t.backend.TrackEvent(ctx, "", event); err != nil {
		slog.Warn("upstream analytics track failed", "event", eventType, "error", err)
	}
	return true
}

// TrackPageView fires a page_view keyed by path.
func (t *Tracker) TrackPageView(ctx context.Context, sessionID, path string, consent bool) bool {
	return t.Track(ctx, sessionID, EventPageView, path, consent, map[string]string{"page_path": path})
}

// TrackProductView fires a view_item keyed by product id.
func (t *Tracker) TrackProductView(ctx context.Context, sessionID, productID string, consent bool) bool {
	return t.Track(ctx, sessionID, EventProductView, productID, consent, map[string]string{"item_id": productID})
}

// TrackPurchase fires the one-shot purchase event for an order.
func (t *Tracker) TrackPurchase(ctx context.Context, sessionID, orderID string, totalPaisa int64, consent bool) bool {
	return t.Track(ctx, sessionID, EventPurchase, orderID, consent, map[string]string{
		"transaction_id": orderID,
		"value_paisa":    formatPaisa(totalPaisa),
	})
}

// EndSession drops the session's fingerprint set, mirroring the
// session-scoped lifetime of the original de-duplication store.
func (t *Tracker) EndSession(sessionID string) {
	t.deduper.DropSession(sessionID)
}
