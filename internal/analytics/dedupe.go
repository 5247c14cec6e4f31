package analytics

import (
	"fmt"
	"sync"
	"time"
)

const (
	// maxFingerprints caps each session's remembered set; the oldest
	// entries drop first.
	maxFingerprints = 100

	fingerprintTTL = time.Hour
)

// Fingerprint identifies one tracked event at hour granularity: the
// same event for the same subject within the same clock hour is a
// duplicate.
func Fingerprint(eventType, subjectID string, now time.Time) string {
	return fmt.Sprintf("%s:%s:%d", eventType, subjectID, now.Unix()/int64(time.Hour/time.Second))
}

type fingerprintEntry struct {
	key  string
	seen time.Time
}

// Deduper holds the per-session sets of already-sent event
// fingerprints. Best-effort only: sessions do not share sets, so the
// same user in two sessions can still double-fire.
type Deduper struct {
	mu       sync.Mutex
	sessions map[string][]fingerprintEntry
	now      func() time.Time
}

func NewDeduper() *Deduper {
	return &Deduper{
		sessions: make(map[string][]fingerprintEntry),
		now:      time.Now,
	}
}

// MarkSent records the event's fingerprint and reports whether it was
// already present. Entries older than an hour are pruned on every
// call, then the set is capped at the most recent 100.
func (d *Deduper) MarkSent(sessionID, eventType, subjectID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	key := Fingerprint(eventType, subjectID, now)

	entries := d.sessions[sessionID]
	kept := entries[:0]
	for _, e := range entries {
		if now.Sub(e.seen) < fingerprintTTL {
			kept = append(kept, e)
		}
	}

	for _, e := range kept {
		if e.key == key {
			d.sessions[sessionID] = kept
			return true
		}
	}

	kept = append(kept, fingerprintEntry{key: key, seen: now})
	if len(kept) > maxFingerprints {
		kept = kept[len(kept)-maxFingerprints:]
	}
	d.sessions[sessionID] = kept
	return false
}

// DropSession forgets a session's fingerprint set.
func (d *Deduper) DropSession(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, sessionID)
}
