package replay

import (
	"errors"
	"fmt"
)

// SkipReason explains why a replay did not contribute to a result.
type SkipReason int

const (
	// SkipNoKey means the score has no replay key.
	SkipNoKey SkipReason = iota
	// SkipUnavailable means the replay could not be located or opened.
	SkipUnavailable
	// SkipUnreadable means reading the stream failed part way.
	SkipUnreadable
	// SkipEmpty means the stream held no usable timing values.
	SkipEmpty
)

func (r SkipReason) String() string {
	switch r {
	case SkipNoKey:
		return "no replay key"
	case SkipUnavailable:
		return "replay unavailable"
	case SkipUnreadable:
		return "replay unreadable"
	case SkipEmpty:
		return "replay empty"
	default:
		return "unknown"
	}
}

// Skip records a replay left out of an aggregate.
type Skip struct {
	Key    string
	Reason SkipReason
	Err    error
}

func (s Skip) Error() string {
	if s.Err != nil {
		return fmt.Sprintf("%s: %s: %v", s.Key, s.Reason, s.Err)
	}
	return fmt.Sprintf("%s: %s", s.Key, s.Reason)
}

func (s Skip) Unwrap() error {
	return s.Err
}

// Analyzer reads replays from a Source.
type Analyzer struct {
	Source      Source
	GreatWindow float64
}

// NewAnalyzer returns an analyzer using DefaultGreatWindow.
func NewAnalyzer(src Source) *Analyzer {
	return &Analyzer{Source: src, GreatWindow: DefaultGreatWindow}
}

// Read loads the timings of one replay. Failures are returned as a Skip.
func (a *Analyzer) Read(key string) (Timings, error) {
	if key == "" {
		return Timings{}, Skip{Reason: SkipNoKey}
	}
	if a.Source == nil {
		return Timings{}, Skip{Key: key, Reason: SkipUnavailable, Err: ErrNotFound}
	}
	rc, err := a.Source.Open(key)
	if err != nil {
		return Timings{}, Skip{Key: key, Reason: SkipUnavailable, Err: err}
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			// Best-effort close for read-only replay.
			_ = cerr
		}
	}()
	timings, err := ReadTimings(rc)
	if err != nil {
		return Timings{}, Skip{Key: key, Reason: SkipUnreadable, Err: err}
	}
	if len(timings.Times) == 0 && len(timings.Deviations) == 0 {
		return Timings{}, Skip{Key: key, Reason: SkipEmpty}
	}
	return timings, nil
}

// Window returns the largest deviation that keeps a combo going. A nil
// analyzer or a non-positive GreatWindow uses DefaultGreatWindow.
func (a *Analyzer) Window() float64 {
	if a == nil || a.GreatWindow <= 0 {
		return DefaultGreatWindow
	}
	return a.GreatWindow
}

// AsSkip extracts a Skip from err.
func AsSkip(err error) (Skip, bool) {
	var s Skip
	if errors.As(err, &s) {
		return s, true
	}
	return Skip{}, false
}
