package stats

import (
	"github.com/zastari/etterna-graph/internal/history"
	"github.com/zastari/etterna-graph/internal/replay"
)

// ReplayReport summarizes every readable replay of a history.
type ReplayReport struct {
	Analyzed     int
	Skipped      []replay.Skip
	Manipulation []Point
	ComboBreaks  []replay.BreakProbability
}

// AnalyzeReplays reads the replay of every play that has a replay key. Each
// replay feeds both the manipulation series and one combo histogram local to
// this call. Replays that cannot be used are listed in Skipped. A nil
// analyzer yields an empty report.
func AnalyzeReplays(h *history.History, a *replay.Analyzer) ReplayReport {
	var report ReplayReport
	if a == nil || h == nil {
		return report
	}
	var hist replay.ComboHistogram
	window := a.Window()
	for _, rec := range h.Records() {
		if rec.Key == "" {
			continue
		}
		timings, err := a.Read(rec.Key)
		if err != nil {
			if skip, ok := replay.AsSkip(err); ok {
				report.Skipped = append(report.Skipped, skip)
			}
			continue
		}
		report.Analyzed++
		if manip := LogManip(timings.Times); manip.OK() {
			report.Manipulation = append(report.Manipulation, Point{At: rec.PlayedAt, Value: manip.Value})
		}
		hist.Add(timings.Deviations, window)
	}
	report.ComboBreaks = hist.Probabilities()
	return report
}

// ComboBreakProbabilities returns the chance of a combo breaking at each
// combo length, over all replays of the history.
func ComboBreakProbabilities(h *history.History, a *replay.Analyzer) []replay.BreakProbability {
	return AnalyzeReplays(h, a).ComboBreaks
}

// ManipulationSeries returns LogManip of every readable replay over time.
func ManipulationSeries(h *history.History, a *replay.Analyzer) []Point {
	return AnalyzeReplays(h, a).Manipulation
}
