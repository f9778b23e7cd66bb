// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"

	"github.com/zastari/etterna-graph/internal/history"
	"github.com/zastari/etterna-graph/internal/model"
	"github.com/zastari/etterna-graph/internal/replay"
	"github.com/zastari/etterna-graph/internal/store"
)

const (
	defaultMinSessionSize = 1
	defaultTopCharts      = 10
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Plays           int
	Accuracy        []Point
	Skill           []Point
	SessionLengths  []SessionLength
	Sessions        []model.Session
	SessionSizes    map[int]int
	WeeklySkillsets []SkillsetShare
	SessionSkills   []SkillsetShare
	HourOfDay       [24]int
	HoursBySkillset [model.NumSkillsets]float64
	PlaysPerWeek    []WeekCount
	TopCharts       []ChartPlays
	ChartPlayCounts map[int]int
	// Replays is nil when no replay analyzer was given.
	Replays *ReplayReport
}

// BuildReport runs every query on the history. a may be nil to skip replay
// analysis.
func BuildReport(h *history.History, a *replay.Analyzer, cfg model.StatsConfig) Report {
	minSize := cfg.MinSessionSize
	if minSize <= 0 {
		minSize = defaultMinSessionSize
	}
	top := cfg.TopCharts
	if top <= 0 {
		top = defaultTopCharts
	}

	lengths, sessions := SessionLengths(h, minSize)
	report := Report{
		Plays:           h.Len(),
		Accuracy:        AccuracySeries(h),
		Skill:           SkillSeries(h),
		SessionLengths:  lengths,
		Sessions:        sessions,
		SessionSizes:    PlaysPerSessionHistogram(h, minSize),
		WeeklySkillsets: SkillsetDistributionByWeek(h),
		SessionSkills:   SessionSkillsets(h, minSize),
		HourOfDay:       PlaysByHourOfDay(h),
		HoursBySkillset: HoursPerSkillset(h),
		PlaysPerWeek:    PlaysPerWeek(h),
		TopCharts:       MostPlayedCharts(h, top),
		ChartPlayCounts: ChartPlayDistribution(h),
	}
	if a != nil {
		replays := AnalyzeReplays(h, a)
		report.Replays = &replays
	}
	return report
}

// Reload replaces the contents of h with the stored scores matching cfg.
func Reload(ctx context.Context, st *store.Store, h *history.History, cfg model.StatsConfig) error {
	records, err := st.ListScores(ctx, cfg)
	if err != nil {
		return err
	}
	h.Load(records)
	return nil
}
