package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/zastari/etterna-graph/internal/model"
)

func floatPtr(v float64) *float64 {
	return &v
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestReplaceAndListScores(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	start := time.Date(2021, 5, 2, 20, 30, 0, 0, time.UTC)
	records := []model.ScoreRecord{
		{
			Key:            "Sabc",
			ChartID:        "Xchart",
			Song:           "Song",
			Pack:           "Pack",
			Rate:           1.1,
			PlayedAt:       start.Add(time.Hour),
			WifeScore:      floatPtr(0.93),
			Overall:        floatPtr(24.5),
			SurviveSeconds: floatPtr(120),
			SSRs: &model.SkillsetSSRs{
				Overall: 24.5,
				Values:  [model.NumSkillsets]float64{20, 24.5, 21, 19, 10, 12, 18},
			},
		},
		{
			Key:       "Sdef",
			ChartID:   "Ychart",
			PlayedAt:  start,
			WifeScore: floatPtr(math.NaN()),
		},
	}
	if err := st.ReplaceScores(ctx, records); err != nil {
		t.Fatalf("replace scores: %v", err)
	}

	got, err := st.ListScores(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(got))
	}
	if got[0].Key != "Sdef" || got[1].Key != "Sabc" {
		t.Fatalf("expected oldest first, got %s, %s", got[0].Key, got[1].Key)
	}
	if got[0].WifeScore == nil || !math.IsNaN(*got[0].WifeScore) {
		t.Fatalf("expected malformed wifescore to round-trip as NaN")
	}
	if got[0].Overall != nil || got[0].SSRs != nil || got[0].SurviveSeconds != nil {
		t.Fatalf("expected absent values to stay absent: %+v", got[0])
	}
	first := got[1]
	if !first.PlayedAt.Equal(start.Add(time.Hour)) {
		t.Fatalf("unexpected played at %v", first.PlayedAt)
	}
	if first.WifeScore == nil || *first.WifeScore != 0.93 {
		t.Fatalf("unexpected wifescore %v", first.WifeScore)
	}
	if first.SSRs == nil || first.SSRs.Dominant() != model.Jumpstream {
		t.Fatalf("unexpected ssrs %+v", first.SSRs)
	}
	if first.Rate != 1.1 || first.Song != "Song" || first.Pack != "Pack" {
		t.Fatalf("unexpected chart fields %+v", first)
	}
}

func TestReplaceScoresDropsPreviousHistory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2021, 5, 2, 20, 30, 0, 0, time.UTC)
	if err := st.ReplaceScores(ctx, []model.ScoreRecord{{Key: "a", PlayedAt: now}, {Key: "b", PlayedAt: now}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := st.ReplaceScores(ctx, []model.ScoreRecord{{Key: "c", PlayedAt: now}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	n, err := st.CountScores(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 score, got %d", n)
	}
}

func TestListScoresSince(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2021, 5, 2, 20, 30, 0, 0, time.UTC)
	records := []model.ScoreRecord{
		{Key: "old", PlayedAt: now.Add(-48 * time.Hour)},
		{Key: "new", PlayedAt: now},
	}
	if err := st.ReplaceScores(ctx, records); err != nil {
		t.Fatalf("replace: %v", err)
	}
	since := now.Add(-time.Hour)
	got, err := st.ListScores(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Key != "new" {
		t.Fatalf("expected only the new score, got %+v", got)
	}
}

func TestListScoresOrdersSubsecondTimes(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2021, 5, 2, 20, 30, 0, 0, time.UTC)
	records := []model.ScoreRecord{
		{Key: "late", ChartID: "A", PlayedAt: base.Add(time.Second)},
		{Key: "half", ChartID: "A", PlayedAt: base.Add(500 * time.Millisecond)},
		{Key: "whole", ChartID: "A", PlayedAt: base},
	}
	if err := st.ReplaceScores(ctx, records); err != nil {
		t.Fatalf("replace scores: %v", err)
	}
	got, err := st.ListScores(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	want := []string{"whole", "half", "late"}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i, key := range want {
		if got[i].Key != key {
			t.Fatalf("position %d: expected %s, got %s", i, key, got[i].Key)
		}
	}
	if !got[1].PlayedAt.Equal(base.Add(500 * time.Millisecond)) {
		t.Fatalf("expected sub-second time to round trip, got %v", got[1].PlayedAt)
	}

	since := base.Add(500 * time.Millisecond)
	filtered, err := st.ListScores(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	if len(filtered) != 2 || filtered[0].Key != "half" {
		t.Fatalf("expected half and late, got %+v", filtered)
	}
}
