package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourease/storefront/internal/backend"
)

func newTestTracker(t *testing.T) (*Tracker, *int64, *int64) {
	t.Helper()

	var ga4Calls, trackCalls int64

	ga4Server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&ga4Calls, 1)
		assert.Equal(t, "mid-test", r.URL.Query().Get("measurement_id"))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(ga4Server.Close)

	backendServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&trackCalls, 1)
		var event backend.TrackEventRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&event))
		assert.NotEmpty(t, event.EventType)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(backendServer.Close)

	ga4 := NewGA4Client("mid-test", "secret").WithCollectURL(ga4Server.URL)
	tracker := NewTracker(ga4, backend.NewClient(backendServer.URL, time.Second))
	return tracker, &ga4Calls, &trackCalls
}

func TestTrackProductView_FiresOncePerHour(t *testing.T) {
	tracker, ga4Calls, trackCalls := newTestTracker(t)
	ctx := context.Background()

	assert.True(t, tracker.TrackProductView(ctx, "sess", "p1", true))
	assert.False(t, tracker.TrackProductView(ctx, "sess", "p1", true))

	assert.Equal(t, int64(1), atomic.LoadInt64(ga4Calls))
	assert.Equal(t, int64(1), atomic.LoadInt64(trackCalls))
}

func TestTrackProductView_DistinctProductsBothFire(t *testing.T) {
	tracker, ga4Calls, _ := newTestTracker(t)
	ctx := context.Background()

	assert.True(t, tracker.TrackProductView(ctx, "sess", "p1", true))
	assert.True(t, tracker.TrackProductView(ctx, "sess", "p2", true))

	assert.Equal(t, int64(2), atomic.LoadInt64(ga4Calls))
}

func TestTrack_ConsentGate(t *testing.T) {
	tracker, ga4Calls, trackCalls := newTestTracker(t)

	assert.False(t, tracker.TrackPageView(context.Background(), "sess", "/home", false))
	assert.Equal(t, int64(0), atomic.LoadInt64(ga4Calls))
	assert.Equal(t, int64(0), atomic.LoadInt64(trackCalls))
}

func TestTrackPurchase_SendFailureStillMarksSent(t *testing.T) {
	// Both sinks reject; the event still counts as fired so a re-render
	// cannot double-report the purchase.
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	ga4 := NewGA4Client("mid", "secret").WithCollectURL(failing.URL)
	tracker := NewTracker(ga4, backend.NewClient(failing.URL, time.Second))

	assert.True(t, tracker.TrackPurchase(context.Background(), "sess", "order-1", 25000, true))
	assert.False(t, tracker.TrackPurchase(context.Background(), "sess", "order-1", 25000, true))
}

func TestEndSession_ResetsDedup(t *testing.T) {
	tracker, ga4Calls, _ := newTestTracker(t)
	ctx := context.Background()

	assert.True(t, tracker.TrackPageView(ctx, "sess", "/home", true))
	tracker.EndSession("sess")
	assert.True(t, tracker.TrackPageView(ctx, "sess", "/home", true))

	assert.Equal(t, int64(2), atomic.LoadInt64(ga4Calls))
}
