// Package history holds the currently loaded score history and caches
// derived groupings for it.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zastari/etterna-graph/internal/group"
	"github.com/zastari/etterna-graph/internal/model"
)

type sessionKey struct {
	history    uuid.UUID
	minSession int
}

// History owns one loaded set of score records. Session segmentation is
// memoized per load and per minimum session size; Load drops the cache.
type History struct {
	mu       sync.RWMutex
	id       uuid.UUID
	gap      time.Duration
	records  []model.ScoreRecord
	sorted   []*model.ScoreRecord
	sessions map[sessionKey][]model.Session
}

// New creates a history from records. A non-positive gap uses
// group.DefaultSessionGap.
func New(records []model.ScoreRecord, gap time.Duration) *History {
	h := &History{gap: gap}
	h.Load(records)
	return h
}

// Load replaces the history with a new set of records.
func (h *History) Load(records []model.ScoreRecord) {
	owned := make([]model.ScoreRecord, len(records))
	copy(owned, records)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.id = uuid.New()
	h.records = owned
	h.sorted = group.SortByTime(owned)
	h.sessions = map[sessionKey][]model.Session{}
}

// Len returns the number of loaded records.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Records returns the loaded records ordered by play time.
func (h *History) Records() []*model.ScoreRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sorted
}

// Sessions returns the play sessions with at least minSize plays.
func (h *History) Sessions(minSize int) []model.Session {
	if minSize < 1 {
		minSize = 1
	}
	h.mu.RLock()
	key := sessionKey{history: h.id, minSession: minSize}
	cached, ok := h.sessions[key]
	sorted := h.sorted
	h.mu.RUnlock()
	if ok {
		return cached
	}

	sessions := group.Segment(sorted, h.gap, minSize)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.id != key.history {
		// Reloaded while segmenting; do not cache a stale result.
		return sessions
	}
	if existing, ok := h.sessions[key]; ok {
		return existing
	}
	h.sessions[key] = sessions
	return sessions
}

// Weeks returns the calendar-week buckets of the history.
func (h *History) Weeks() []model.WeekBucket {
	return group.ByWeek(h.Records())
}
