package group

import (
	"testing"
	"time"

	"github.com/zastari/etterna-graph/internal/model"
)

var base = time.Date(2021, 3, 1, 18, 0, 0, 0, time.UTC)

func recordsAt(offsets ...time.Duration) []model.ScoreRecord {
	out := make([]model.ScoreRecord, len(offsets))
	for i, off := range offsets {
		out[i] = model.ScoreRecord{Key: string(rune('a' + i)), PlayedAt: base.Add(off)}
	}
	return out
}

func TestSegmentSplitsOnGap(t *testing.T) {
	records := recordsAt(
		0,
		5*time.Minute,
		25*time.Minute, // exactly 20 minutes after the previous play
		46*time.Minute, // 21 minutes later
		3*time.Hour,
	)
	sessions := Segment(SortByTime(records), DefaultSessionGap, 1)
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	sizes := []int{len(sessions[0].Scores), len(sessions[1].Scores), len(sessions[2].Scores)}
	if sizes[0] != 3 || sizes[1] != 1 || sizes[2] != 1 {
		t.Fatalf("unexpected session sizes: %v", sizes)
	}
	if !sessions[0].Start().Equal(base) {
		t.Fatalf("expected first session to start at %v, got %v", base, sessions[0].Start())
	}
	if got := sessions[0].Duration(); got != 25*time.Minute {
		t.Fatalf("expected 25m duration, got %v", got)
	}
}

func TestSegmentCoversEveryRecordOnce(t *testing.T) {
	records := recordsAt(2*time.Hour, 0, 10*time.Minute, 90*time.Minute, 2*time.Hour+time.Minute, 5*time.Minute)
	sessions := Segment(SortByTime(records), DefaultSessionGap, 1)

	seen := map[string]int{}
	var prev *model.ScoreRecord
	for si, s := range sessions {
		for i, rec := range s.Scores {
			seen[rec.Key]++
			if prev != nil {
				gap := rec.PlayedAt.Sub(prev.PlayedAt)
				if gap < 0 {
					t.Fatalf("records out of order at session %d index %d", si, i)
				}
				if i == 0 && gap <= DefaultSessionGap {
					t.Fatalf("session %d starts only %v after the previous one", si, gap)
				}
				if i > 0 && gap > DefaultSessionGap {
					t.Fatalf("gap %v inside session %d", gap, si)
				}
			}
			prev = rec
		}
	}
	if len(seen) != len(records) {
		t.Fatalf("expected %d records in sessions, got %d", len(records), len(seen))
	}
	for key, n := range seen {
		if n != 1 {
			t.Fatalf("record %s appears %d times", key, n)
		}
	}
}

func TestSegmentMinSizeIsSubset(t *testing.T) {
	records := recordsAt(0, time.Minute, 2*time.Minute, time.Hour, 3*time.Hour, 3*time.Hour+time.Minute)
	sorted := SortByTime(records)
	all := Segment(sorted, DefaultSessionGap, 1)
	filtered := Segment(sorted, DefaultSessionGap, 2)
	if len(all) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(all))
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 sessions with min size 2, got %d", len(filtered))
	}
	for _, f := range filtered {
		found := false
		for _, s := range all {
			if s.Start().Equal(f.Start()) && len(s.Scores) == len(f.Scores) {
				found = true
			}
		}
		if !found {
			t.Fatalf("filtered session at %v not present in unfiltered result", f.Start())
		}
	}
}

func TestSegmentEmptyAndSingle(t *testing.T) {
	if got := Segment(nil, DefaultSessionGap, 1); len(got) != 0 {
		t.Fatalf("expected no sessions, got %d", len(got))
	}
	single := Segment(SortByTime(recordsAt(0)), DefaultSessionGap, 1)
	if len(single) != 1 || len(single[0].Scores) != 1 {
		t.Fatalf("expected one session of size 1, got %+v", single)
	}
	if got := Segment(SortByTime(recordsAt(0)), DefaultSessionGap, 2); len(got) != 0 {
		t.Fatalf("expected single play to be filtered, got %d sessions", len(got))
	}
}

func TestSortByTimeIsStable(t *testing.T) {
	records := recordsAt(time.Minute, 0, 0, time.Minute)
	sorted := SortByTime(records)
	keys := ""
	for _, r := range sorted {
		keys += r.Key
	}
	if keys != "bcad" {
		t.Fatalf("unexpected order %q", keys)
	}
}

func TestByWeekDropsFirstRun(t *testing.T) {
	// 2021-03-01 is a Monday.
	records := recordsAt(
		-24*time.Hour,  // Sunday, previous ISO week
		0,              // week 9
		48*time.Hour,   // week 9
		7*24*time.Hour, // week 10
		21*24*time.Hour,
	)
	weeks := ByWeek(SortByTime(records))
	if len(weeks) != 3 {
		t.Fatalf("expected 3 weeks, got %d", len(weeks))
	}
	for i, w := range weeks {
		if w.Index != i {
			t.Fatalf("expected index %d, got %d", i, w.Index)
		}
	}
	if len(weeks[0].Scores) != 2 || weeks[0].Week != 9 {
		t.Fatalf("unexpected first week: %+v", weeks[0])
	}
	if weeks[2].Week != 12 {
		t.Fatalf("expected week 12, got %d", weeks[2].Week)
	}
}

func TestByWeekSingleWeek(t *testing.T) {
	if got := ByWeek(SortByTime(recordsAt(0, time.Hour))); len(got) != 0 {
		t.Fatalf("expected single week to be discarded, got %d", len(got))
	}
	if got := ByWeek(nil); len(got) != 0 {
		t.Fatalf("expected no weeks, got %d", len(got))
	}
}
