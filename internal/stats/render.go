package stats

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/zastari/etterna-graph/internal/model"
	"github.com/zastari/etterna-graph/internal/replay"
)

const (
	recentSessions = 30
	recentWeeks    = 30
	comboRows      = 20
)

// Table is a rendered-ready table: a header row and string cells.
type Table struct {
	Headers    []string
	Rows       [][]string
	RightAlign map[int]bool
}

// SkillsetTable lists hours played and the weekly share trend per skillset.
func SkillsetTable(r Report) Table {
	weeks := r.WeeklySkillsets
	if len(weeks) > recentWeeks {
		weeks = weeks[len(weeks)-recentWeeks:]
	}
	t := Table{
		Headers:    []string{"Skillset", "Hours", "Last Week", "Trend"},
		RightAlign: map[int]bool{1: true, 2: true},
	}
	for _, ss := range model.Skillsets() {
		trend := make([]float64, len(weeks))
		for i, wk := range weeks {
			trend[i] = wk.Percent[ss]
		}
		last := "-"
		if len(weeks) > 0 {
			last = fmt.Sprintf("%.1f%%", weeks[len(weeks)-1].Percent[ss])
		}
		t.Rows = append(t.Rows, []string{
			ss.String(),
			humanize.FormatFloat("#,###.##", r.HoursBySkillset[ss]),
			last,
			Sparkline(trend),
		})
	}
	return t
}

// HourTable lists plays per hour of the day.
func HourTable(r Report) Table {
	t := Table{
		Headers:    []string{"Hour", "Plays"},
		RightAlign: map[int]bool{1: true},
	}
	for hour, n := range r.HourOfDay {
		t.Rows = append(t.Rows, []string{fmt.Sprintf("%02d:00", hour), humanize.Comma(int64(n))})
	}
	return t
}

// ChartTable lists the most played charts.
func ChartTable(r Report) Table {
	t := Table{
		Headers:    []string{"#", "Song", "Pack", "Plays"},
		RightAlign: map[int]bool{0: true, 3: true},
	}
	for i, c := range r.TopCharts {
		song := c.Song
		if song == "" {
			song = c.ChartID
		}
		t.Rows = append(t.Rows, []string{strconv.Itoa(i + 1), song, c.Pack, humanize.Comma(int64(c.Plays))})
	}
	return t
}

// ChartPlayCountTable lists how many charts were played k times.
func ChartPlayCountTable(r Report) Table {
	return countTable([]string{"Plays", "Charts"}, r.ChartPlayCounts)
}

// SessionSizeTable lists how many sessions had k plays.
func SessionSizeTable(r Report) Table {
	return countTable([]string{"Plays", "Sessions"}, r.SessionSizes)
}

func countTable(headers []string, counts map[int]int) Table {
	t := Table{Headers: headers, RightAlign: map[int]bool{0: true, 1: true}}
	keys := lo.Keys(counts)
	sort.Ints(keys)
	for _, k := range keys {
		t.Rows = append(t.Rows, []string{strconv.Itoa(k), humanize.Comma(int64(counts[k]))})
	}
	return t
}

// RecentSessionTable lists the latest sessions with their main skillset.
func RecentSessionTable(r Report) Table {
	t := Table{
		Headers:    []string{"Start", "Plays", "Minutes", "Main Skillset"},
		RightAlign: map[int]bool{1: true, 2: true},
	}
	shares := lo.SliceToMap(r.SessionSkills, func(s SkillsetShare) (int64, SkillsetShare) {
		return s.Start.UnixNano(), s
	})
	lengths := r.SessionLengths
	if len(lengths) > recentSessions {
		lengths = lengths[len(lengths)-recentSessions:]
	}
	for _, s := range lengths {
		main := "-"
		if share, ok := shares[s.Start.UnixNano()]; ok {
			main = topSkillset(share)
		}
		t.Rows = append(t.Rows, []string{
			s.Start.Format("2006-01-02 15:04"),
			strconv.Itoa(s.Plays),
			fmt.Sprintf("%.1f", s.Minutes),
			main,
		})
	}
	return t
}

func topSkillset(share SkillsetShare) string {
	best := model.Stream
	for _, ss := range model.Skillsets() {
		if share.Percent[ss] > share.Percent[best] {
			best = ss
		}
	}
	return fmt.Sprintf("%s (%.0f%%)", best, share.Percent[best])
}

// ComboTable lists combo-break probabilities for the shortest combos.
func ComboTable(r Report) Table {
	t := Table{
		Headers:    []string{"Combo", "Reached", "Broken", "Break Chance"},
		RightAlign: map[int]bool{0: true, 1: true, 2: true, 3: true},
	}
	if r.Replays == nil {
		return t
	}
	for _, p := range lo.Slice(r.Replays.ComboBreaks, 0, comboRows) {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(p.Combo),
			humanize.Comma(int64(p.Reached)),
			humanize.Comma(int64(p.Broken)),
			fmt.Sprintf("%.2f%%", p.Probability*100),
		})
	}
	return t
}

// SkipTable counts unusable replays by reason.
func SkipTable(r Report) Table {
	t := Table{Headers: []string{"Reason", "Replays"}, RightAlign: map[int]bool{1: true}}
	if r.Replays == nil {
		return t
	}
	counts := lo.CountValuesBy(r.Replays.Skipped, func(s replay.Skip) replay.SkipReason {
		return s.Reason
	})
	reasons := lo.Keys(counts)
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	for _, reason := range reasons {
		t.Rows = append(t.Rows, []string{reason.String(), humanize.Comma(int64(counts[reason]))})
	}
	return t
}

func renderTable(w io.Writer, title string, t Table, empty string) error {
	if len(t.Rows) == 0 {
		if empty == "" {
			return nil
		}
		_, err := fmt.Fprintf(w, "%s\n%s\n\n", title, empty)
		return err
	}
	return writeTable(w, title, t.Headers, t.Rows, t.RightAlign)
}

// RenderSkillsets prints the skillset table.
func RenderSkillsets(w io.Writer, r Report) error {
	return renderTable(w, "Skillsets", SkillsetTable(r), "")
}

// RenderActivity prints plays by hour, session sizes and recent sessions.
func RenderActivity(w io.Writer, r Report) error {
	if err := renderTable(w, "Plays by Hour ("+Sparkline(hourValues(r))+")", HourTable(r), ""); err != nil {
		return err
	}
	if err := renderTable(w, "Session Sizes", SessionSizeTable(r), "No sessions found."); err != nil {
		return err
	}
	return renderTable(w, "Recent Sessions", RecentSessionTable(r), "")
}

func hourValues(r Report) []float64 {
	out := make([]float64, len(r.HourOfDay))
	for i, n := range r.HourOfDay {
		out[i] = float64(n)
	}
	return out
}

// RenderCharts prints the most played charts and the play count
// distribution.
func RenderCharts(w io.Writer, r Report) error {
	if err := renderTable(w, "Most Played Charts", ChartTable(r), "No qualifying plays found."); err != nil {
		return err
	}
	return renderTable(w, "Charts by Play Count", ChartPlayCountTable(r), "")
}

// RenderReplays prints replay analysis results.
func RenderReplays(w io.Writer, r Report) error {
	return RenderReplaysWithSize(w, r, 0, defaultPlotHeight, false)
}

// RenderReplaysWithSize prints replay analysis results with plots sized to a
// given total width.
func RenderReplaysWithSize(w io.Writer, r Report, totalWidth, height int, useColor bool) error {
	if r.Replays == nil {
		_, err := fmt.Fprintln(w, "Replay analysis disabled (no replay directory).")
		return err
	}
	if _, err := fmt.Fprintf(w, "Replays analyzed: %s\n\n", humanize.Comma(int64(r.Replays.Analyzed))); err != nil {
		return err
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	if err := PlotTimeline(w, "Replays", []Series{
		{Name: "Log manip", Points: r.Replays.Manipulation},
	}, width, height, useColor); err != nil {
		return err
	}
	if len(r.Replays.ComboBreaks) > 0 {
		chances := make([]float64, len(r.Replays.ComboBreaks))
		for i, p := range r.Replays.ComboBreaks {
			chances[i] = p.Probability * 100
		}
		if _, err := fmt.Fprintf(w, "Break chance by combo: %s\n\n", Sparkline(chances)); err != nil {
			return err
		}
	}
	if err := renderTable(w, "Combo Breaks", ComboTable(r), "No combo data."); err != nil {
		return err
	}
	return renderTable(w, "Skipped Replays", SkipTable(r), "")
}

// RenderReport prints every section of a report.
func RenderReport(w io.Writer, r Report, window int) error {
	if err := RenderSummary(w, r); err != nil {
		return err
	}
	if r.Plays == 0 {
		return nil
	}
	steps := []func() error{
		func() error { return RenderCurves(w, r, window) },
		func() error { return RenderSkillsets(w, r) },
		func() error { return RenderActivity(w, r) },
		func() error { return RenderCharts(w, r) },
		func() error { return RenderReplays(w, r) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
