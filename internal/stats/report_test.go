package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zastari/etterna-graph/internal/history"
	"github.com/zastari/etterna-graph/internal/model"
	"github.com/zastari/etterna-graph/internal/replay"
	"github.com/zastari/etterna-graph/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	writeReplay(t, dir, "S1", "0.1 0.01", "0.2 0.01", "0.3 0.2", "0.4 0.01")
	h := sampleHistory()

	report := BuildReport(h, replay.NewAnalyzer(replay.DirSource{Dir: dir}), model.StatsConfig{TopCharts: 2})
	if report.Plays != 7 {
		t.Fatalf("expected 7 plays, got %d", report.Plays)
	}
	if len(report.SessionLengths) != 3 || len(report.Sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(report.SessionLengths))
	}
	if len(report.TopCharts) != 2 {
		t.Fatalf("expected top 2 charts, got %+v", report.TopCharts)
	}
	if len(report.PlaysPerWeek) != 3 || len(report.WeeklySkillsets) != 1 {
		t.Fatalf("unexpected weekly data: %+v %+v", report.PlaysPerWeek, report.WeeklySkillsets)
	}
	if report.Replays == nil || report.Replays.Analyzed != 1 {
		t.Fatalf("expected replay analysis, got %+v", report.Replays)
	}

	noReplays := BuildReport(h, nil, model.StatsConfig{MinSessionSize: 2})
	if noReplays.Replays != nil {
		t.Fatalf("expected replay analysis to be skipped")
	}
	if len(noReplays.SessionLengths) != 2 {
		t.Fatalf("expected min session size to apply, got %d sessions", len(noReplays.SessionLengths))
	}
	if len(noReplays.TopCharts) != 3 {
		t.Fatalf("expected default top charts to include all 3 charts, got %d", len(noReplays.TopCharts))
	}
}

func TestReload(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()
	records := []model.ScoreRecord{
		score("S1", "A", at(1, 20, 0), 0.9, model.Stream, 120),
		score("S2", "A", at(9, 20, 0), 0.9, model.Stream, 120),
	}
	if err := st.ReplaceScores(ctx, records); err != nil {
		t.Fatalf("replace scores: %v", err)
	}

	h := history.New(nil, 0)
	since := at(5, 0, 0)
	if err := Reload(ctx, st, h, model.StatsConfig{Since: &since}); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if h.Len() != 1 || h.Records()[0].Key != "S2" {
		t.Fatalf("expected only S2 after reload, got %d records", h.Len())
	}
}

func TestRenderReport(t *testing.T) {
	dir := t.TempDir()
	writeReplay(t, dir, "S1", "0.1 0.01", "0.2 0.01", "0.3 0.2", "0.4 0.01")
	report := BuildReport(sampleHistory(), replay.NewAnalyzer(replay.DirSource{Dir: dir}), model.StatsConfig{})

	var buf bytes.Buffer
	if err := RenderReport(&buf, report, 2); err != nil {
		t.Fatalf("render report: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Summary",
		"Plays: 7",
		"Progress",
		"Activity",
		"Skillsets",
		"Technical",
		"Plays by Hour",
		"Session Sizes",
		"Most Played Charts",
		"Song A",
		"Combo Breaks",
		"Break chance by combo",
		"100.00%",
		"Skipped Replays",
		"unavailable",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderReport(&buf, BuildReport(history.New(nil, 0), nil, model.StatsConfig{}), 1); err != nil {
		t.Fatalf("render report: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No scores found." {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
}
