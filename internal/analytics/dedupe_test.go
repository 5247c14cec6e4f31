package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestDeduper(start time.Time) (*Deduper, *time.Time) {
	clock := start
	d := NewDeduper()
	d.now = func() time.Time { return clock }
	return d, &clock
}

func TestMarkSent_SuppressesSameHourDuplicate(t *testing.T) {
	d, _ := newTestDeduper(time.Date(2026, 8, 31, 10, 5, 0, 0, time.UTC))

	assert.False(t, d.MarkSent("sess", EventProductView, "p1"))
	assert.True(t, d.MarkSent("sess", EventProductView, "p1"))
}

func TestMarkSent_DifferentSubjectsAreDistinct(t *testing.T) {
	d, _ := newTestDeduper(time.Date(2026, 8, 31, 10, 5, 0, 0, time.UTC))

	assert.False(t, d.MarkSent("sess", EventProductView, "p1"))
	assert.False(t, d.MarkSent("sess", EventProductView, "p2"))
}

func TestMarkSent_DifferentEventTypesAreDistinct(t *testing.T) {
	d, _ := newTestDeduper(time.Date(2026, 8, 31, 10, 5, 0, 0, time.UTC))

	assert.False(t, d.MarkSent("sess", EventPageView, "p1"))
	assert.False(t, d.MarkSent("sess", EventProductView, "p1"))
}

func TestMarkSent_NewHourBucketFiresAgain(t *testing.T) {
	d, clock := newTestDeduper(time.Date(2026, 8, 31, 10, 59, 0, 0, time.UTC))

	assert.False(t, d.MarkSent("sess", EventProductView, "p1"))

	*clock = clock.Add(2 * time.Minute) // crosses the hour boundary
	assert.False(t, d.MarkSent("sess", EventProductView, "p1"))
}

func TestMarkSent_PrunesEntriesOlderThanAnHour(t *testing.T) {
	d, clock := newTestDeduper(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))

	assert.False(t, d.MarkSent("sess", EventProductView, "p1"))

	*clock = clock.Add(61 * time.Minute)
	assert.False(t, d.MarkSent("sess", EventPageView, "/home"))
	assert.Len(t, d.sessions["sess"], 1)
}

func TestMarkSent_CapsAtHundredEntries(t *testing.T) {
	d, _ := newTestDeduper(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))

	for i := 0; i < 120; i++ {
		d.MarkSent("sess", EventProductView, fmt.Sprintf("p%d", i))
	}

	assert.Len(t, d.sessions["sess"], 100)
	// Oldest dropped first: p19 was evicted, p119 survives.
	assert.True(t, d.MarkSent("sess", EventProductView, "p119"))
	assert.False(t, d.MarkSent("sess", EventProductView, "p0"))
}

func TestMarkSent_SessionsAreIsolated(t *testing.T) {
	d, _ := newTestDeduper(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))

	assert.False(t, d.MarkSent("tab-a", EventProductView, "p1"))
	assert.False(t, d.MarkSent("tab-b", EventProductView, "p1"))
}

func TestDropSession(t *testing.T) {
	d, _ := newTestDeduper(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))

	assert.False(t, d.MarkSent("sess", EventPurchase, "order-1"))
	d.DropSession("sess")
	assert.False(t, d.MarkSent("sess", EventPurchase, "order-1"))
}
