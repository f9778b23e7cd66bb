// Package group splits a score history into sessions and calendar weeks.
package group

import (
	"sort"
	"time"

	"github.com/zastari/etterna-graph/internal/model"
)

// DefaultSessionGap is the longest pause that still counts as one session.
// A 15 minute break stays inside a session, a 25 minute one does not.
const DefaultSessionGap = 20 * time.Minute

// SortByTime returns the records ordered by play time. Equal timestamps keep
// their input order.
func SortByTime(records []model.ScoreRecord) []*model.ScoreRecord {
	out := make([]*model.ScoreRecord, len(records))
	for i := range records {
		out[i] = &records[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlayedAt.Before(out[j].PlayedAt)
	})
	return out
}

// Segment splits time-ordered records into sessions. A new session starts
// whenever two consecutive plays are more than gap apart. Sessions with fewer
// than minSize plays are dropped.
func Segment(sorted []*model.ScoreRecord, gap time.Duration, minSize int) []model.Session {
	if len(sorted) == 0 {
		return nil
	}
	if gap <= 0 {
		gap = DefaultSessionGap
	}
	var sessions []model.Session
	current := []*model.ScoreRecord{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		if sorted[i].PlayedAt.Sub(sorted[i-1].PlayedAt) > gap {
			sessions = append(sessions, model.Session{Scores: current})
			current = nil
		}
		current = append(current, sorted[i])
	}
	sessions = append(sessions, model.Session{Scores: current})

	if minSize <= 1 {
		return sessions
	}
	kept := sessions[:0]
	for _, s := range sessions {
		if len(s.Scores) >= minSize {
			kept = append(kept, s)
		}
	}
	return kept
}
