package main

import (
	"testing"
	"time"

	"github.com/zastari/etterna-graph/internal/config"
	"github.com/zastari/etterna-graph/internal/model"
)

func TestValidateConfig(t *testing.T) {
	valid := model.StatsConfig{MinSessionSize: 1, TopCharts: 10, SessionGap: time.Minute, GreatWindow: 0.09}
	if err := validateConfig(valid, 1); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	cases := []model.StatsConfig{
		{MinSessionSize: 0, TopCharts: 10, SessionGap: time.Minute, GreatWindow: 0.09},
		{MinSessionSize: 1, TopCharts: 0, SessionGap: time.Minute, GreatWindow: 0.09},
		{MinSessionSize: 1, TopCharts: 10, SessionGap: 0, GreatWindow: 0.09},
		{MinSessionSize: 1, TopCharts: 10, SessionGap: time.Minute, GreatWindow: 0},
	}
	for i, cfg := range cases {
		if err := validateConfig(cfg, 1); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
	if err := validateConfig(valid, 0); err == nil {
		t.Fatalf("expected error for curve window 0")
	}
}

func TestResolveStatsConfigPrefersFlags(t *testing.T) {
	cmd := newReportCmd()
	if err := cmd.Flags().Parse([]string{"--top", "3", "--since", "2021-03-01"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	top := 50
	gap := 30.0
	replays := "/replays"
	fileCfg := config.FileConfig{
		Paths:    config.PathsConfig{Replays: &replays},
		Analysis: config.AnalysisConfig{TopCharts: &top, SessionGapMinutes: &gap},
	}
	cfg, err := resolveStatsConfig(cmd, fileCfg)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.TopCharts != 3 {
		t.Fatalf("expected flag to win, got %d", cfg.TopCharts)
	}
	if cfg.SessionGap != 30*time.Minute {
		t.Fatalf("expected config gap, got %v", cfg.SessionGap)
	}
	if cfg.ReplaysDir != "/replays" {
		t.Fatalf("expected config replays dir, got %q", cfg.ReplaysDir)
	}
	want := time.Date(2021, 3, 1, 0, 0, 0, 0, time.Local)
	if cfg.Since == nil || !cfg.Since.Equal(want) {
		t.Fatalf("unexpected since %v", cfg.Since)
	}
}

func TestFilterSince(t *testing.T) {
	base := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []model.ScoreRecord{
		{Key: "a", PlayedAt: base.Add(-time.Hour)},
		{Key: "b", PlayedAt: base},
		{Key: "c", PlayedAt: base.Add(time.Hour)},
	}
	got := filterSince(records, &base)
	if len(got) != 2 || got[0].Key != "b" || got[1].Key != "c" {
		t.Fatalf("unexpected records %+v", got)
	}
	if len(records) != 3 || records[0].Key != "a" {
		t.Fatalf("expected input to be left alone")
	}
	if got := filterSince(records, nil); len(got) != 3 {
		t.Fatalf("expected all records without since")
	}
}
