package stats

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/zastari/etterna-graph/internal/history"
	"github.com/zastari/etterna-graph/internal/model"
)

const week = 7 * 24 * time.Hour

// Point is one value of a time series.
type Point struct {
	At    time.Time
	Value float64
}

// SessionLength is the duration of the session starting at Start.
type SessionLength struct {
	Start   time.Time
	Plays   int
	Minutes float64
}

// SkillsetShare holds the percentage of plays per dominant skillset for a
// group of plays.
type SkillsetShare struct {
	Index   int
	Start   time.Time
	Plays   int
	Percent [model.NumSkillsets]float64
}

// WeekCount is the number of plays in the week starting at Start.
type WeekCount struct {
	Start time.Time
	Plays int
}

// ChartPlays is the number of qualifying plays on a chart.
type ChartPlays struct {
	ChartID string
	Song    string
	Pack    string
	Plays   int
}

// SessionLengths returns the duration in minutes of every session with at
// least minSize plays, together with the sessions themselves.
func SessionLengths(h *history.History, minSize int) ([]SessionLength, []model.Session) {
	sessions := h.Sessions(minSize)
	lengths := lo.Map(sessions, func(s model.Session, _ int) SessionLength {
		return SessionLength{
			Start:   s.Start(),
			Plays:   len(s.Scores),
			Minutes: s.Duration().Minutes(),
		}
	})
	return lengths, sessions
}

// SkillsetDistributionByWeek returns, per calendar week, which share of the
// plays had each skillset as dominant skillset. Weeks without any play that
// carries skillset ratings are left out.
func SkillsetDistributionByWeek(h *history.History) []SkillsetShare {
	var out []SkillsetShare
	for _, w := range h.Weeks() {
		share, ok := dominantShare(w.Scores)
		if !ok {
			continue
		}
		share.Index = w.Index
		out = append(out, share)
	}
	return out
}

// SessionSkillsets is SkillsetDistributionByWeek computed per session.
func SessionSkillsets(h *history.History, minSize int) []SkillsetShare {
	var out []SkillsetShare
	for i, s := range h.Sessions(minSize) {
		share, ok := dominantShare(s.Scores)
		if !ok {
			continue
		}
		share.Index = i
		out = append(out, share)
	}
	return out
}

func dominantShare(scores []*model.ScoreRecord) (SkillsetShare, bool) {
	var counts [model.NumSkillsets]int
	total := 0
	for _, rec := range scores {
		if rec.SSRs == nil {
			continue
		}
		counts[rec.SSRs.Dominant()]++
		total++
	}
	if total == 0 {
		return SkillsetShare{}, false
	}
	share := SkillsetShare{Start: scores[0].PlayedAt, Plays: total}
	for i, c := range counts {
		share.Percent[i] = float64(c) / float64(total) * 100
	}
	return share, true
}

// PlaysByHourOfDay counts plays per local hour of the day.
func PlaysByHourOfDay(h *history.History) [24]int {
	var hours [24]int
	for _, rec := range h.Records() {
		hours[rec.PlayedAt.Hour()]++
	}
	return hours
}

// PlaysPerSessionHistogram maps a session size to the number of sessions of
// that size.
func PlaysPerSessionHistogram(h *history.History, minSize int) map[int]int {
	sizes := lo.Map(h.Sessions(minSize), func(s model.Session, _ int) int {
		return len(s.Scores)
	})
	return lo.CountValues(sizes)
}

// MostPlayedCharts returns the n charts with the most plays above
// QualifyingWifeScore, most played first. Ties are ordered by chart id.
func MostPlayedCharts(h *history.History, n int) []ChartPlays {
	if n <= 0 {
		return nil
	}
	charts := chartPlays(h)
	if len(charts) > n {
		charts = charts[:n]
	}
	return charts
}

// ChartPlayDistribution maps a play count k to the number of charts played
// exactly k times (qualifying plays only).
func ChartPlayDistribution(h *history.History) map[int]int {
	counts := lo.Map(chartPlays(h), func(c ChartPlays, _ int) int {
		return c.Plays
	})
	return lo.CountValues(counts)
}

func chartPlays(h *history.History) []ChartPlays {
	qualifying := lo.Filter(h.Records(), func(rec *model.ScoreRecord, _ int) bool {
		return qualifies(rec)
	})
	byChart := lo.GroupBy(qualifying, func(rec *model.ScoreRecord) string {
		return rec.ChartID
	})
	out := make([]ChartPlays, 0, len(byChart))
	for id, recs := range byChart {
		out = append(out, ChartPlays{
			ChartID: id,
			Song:    recs[0].Song,
			Pack:    recs[0].Pack,
			Plays:   len(recs),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Plays == out[j].Plays {
			return out[i].ChartID < out[j].ChartID
		}
		return out[i].Plays > out[j].Plays
	})
	return out
}

// HoursPerSkillset sums play time in hours by dominant skillset. Plays
// without skillset ratings or play time are skipped.
func HoursPerSkillset(h *history.History) [model.NumSkillsets]float64 {
	var hours [model.NumSkillsets]float64
	for _, rec := range h.Records() {
		if rec.SSRs == nil || rec.SurviveSeconds == nil || math.IsNaN(*rec.SurviveSeconds) {
			continue
		}
		hours[rec.SSRs.Dominant()] += *rec.SurviveSeconds / 3600
	}
	return hours
}

// PlaysPerWeek counts plays in consecutive weeks. The first week starts one
// week before the earliest play; weeks without plays are included up to the
// week holding the latest play.
func PlaysPerWeek(h *history.History) []WeekCount {
	records := h.Records()
	if len(records) == 0 {
		return nil
	}
	latest := records[len(records)-1].PlayedAt
	var out []WeekCount
	idx := 0
	for start := records[0].PlayedAt.Add(-week); !start.After(latest); start = start.Add(week) {
		end := start.Add(week)
		count := 0
		for idx < len(records) && records[idx].PlayedAt.Before(end) {
			count++
			idx++
		}
		out = append(out, WeekCount{Start: start, Plays: count})
	}
	return out
}

// AccuracySeries returns Accuracy over time, leaving out unusable values.
func AccuracySeries(h *history.History) []Point {
	return series(h, Accuracy)
}

// SkillSeries returns ApproximateSkill over time, leaving out unusable
// values.
func SkillSeries(h *history.History) []Point {
	return series(h, ApproximateSkill)
}

func series(h *history.History, fn func(*model.ScoreRecord) Value) []Point {
	var out []Point
	for _, rec := range h.Records() {
		v := fn(rec)
		if !v.OK() || math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
			continue
		}
		out = append(out, Point{At: rec.PlayedAt, Value: v.Value})
	}
	return out
}
