// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

const sparkChars = " .:-=+*#%@"

// Metric is one labelled headline number of a report.
type Metric struct {
	Label string
	Value string
}

// SummaryMetrics returns the headline numbers shown above the curves.
func SummaryMetrics(r Report) []Metric {
	var totalMinutes float64
	for _, s := range r.SessionLengths {
		totalMinutes += s.Minutes
	}
	avgSession := 0.0
	if len(r.SessionLengths) > 0 {
		avgSession = totalMinutes / float64(len(r.SessionLengths))
	}
	var hours float64
	for _, v := range r.HoursBySkillset {
		hours += v
	}
	bestSkill := 0.0
	for _, p := range r.Skill {
		if p.Value > bestSkill {
			bestSkill = p.Value
		}
	}
	charts := 0
	for _, c := range r.ChartPlayCounts {
		charts += c
	}
	metrics := []Metric{
		{Label: "Plays", Value: humanize.Comma(int64(r.Plays))},
		{Label: "Sessions", Value: humanize.Comma(int64(len(r.SessionLengths)))},
		{Label: "Avg Session", Value: fmt.Sprintf("%.1f min", avgSession)},
		{Label: "Hours Played", Value: humanize.FormatFloat("#,###.#", hours)},
		{Label: "Charts", Value: humanize.Comma(int64(charts))},
		{Label: "Best Skill", Value: fmt.Sprintf("%.2f", bestSkill)},
	}
	if r.Replays != nil {
		metrics = append(metrics, Metric{
			Label: "Replays",
			Value: fmt.Sprintf("%s (%s skipped)", humanize.Comma(int64(r.Replays.Analyzed)), humanize.Comma(int64(len(r.Replays.Skipped)))),
		})
	}
	return metrics
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints the headline numbers of a report.
func RenderSummary(w io.Writer, r Report) error {
	if r.Plays == 0 {
		_, err := fmt.Fprintln(w, "No scores found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	for _, m := range SummaryMetrics(r) {
		if _, err := fmt.Fprintf(w, "%s: %s\n", m.Label, m.Value); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCurves prints progress and activity curves.
func RenderCurves(w io.Writer, r Report, window int) error {
	return RenderCurvesWithSize(w, r, window, 0, defaultPlotHeight, false)
}

// RenderCurvesWithSize prints progress and activity curves sized to a given
// total width.
func RenderCurvesWithSize(w io.Writer, r Report, window, totalWidth, height int, useColor bool) error {
	if r.Plays == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	if err := PlotTimeline(w, "Progress", []Series{
		{Name: "Accuracy", Points: smooth(r.Accuracy, window)},
		{Name: "Skill", Points: smooth(r.Skill, window)},
	}, width, height, useColor); err != nil {
		return err
	}
	minutes := make([]Point, len(r.SessionLengths))
	for i, s := range r.SessionLengths {
		minutes[i] = Point{At: s.Start, Value: s.Minutes}
	}
	weekly := make([]Point, len(r.PlaysPerWeek))
	for i, wc := range r.PlaysPerWeek {
		weekly[i] = Point{At: wc.Start, Value: float64(wc.Plays)}
	}
	return PlotTimeline(w, "Activity", []Series{
		{Name: "Session minutes", Points: smooth(minutes, window)},
		{Name: "Plays per week", Points: weekly},
	}, width, height, useColor)
}

// smooth replaces the values of time-ordered points with their moving
// average, keeping the timestamps.
func smooth(points []Point, window int) []Point {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	out := make([]Point, len(points))
	for i, v := range MovingAverage(values, window) {
		out[i] = Point{At: points[i].At, Value: v}
	}
	return out
}
