package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series is a named set of timestamped values. All series of one plot share
// a time axis.
type Series struct {
	Name   string
	Points []Point
}

type valueRange struct {
	min float64
	max float64
}

// timeSpan is the inclusive time range covered by a plot.
type timeSpan struct {
	start time.Time
	end   time.Time
}

type lineStyle struct {
	name   string
	period int
	on     int
}

type ansiColor struct {
	name string
	code string
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelTop        = "max"
	axisLabelMid        = "mid"
	axisLabelBottom     = "min"
	axisSeparator       = " │ "
	scaleNote           = "Scaled per series; see min/max below."
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
	dayLabelLayout      = "2006-01-02"
	clockLabelLayout    = "15:04"
)

var lineStyles = []lineStyle{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
	{name: "dashdot", period: 8, on: 3},
}

var colorPalette = []ansiColor{
	{name: "cyan", code: "\x1b[36m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "yellow", code: "\x1b[33m"},
	{name: "green", code: "\x1b[32m"},
	{name: "blue", code: "\x1b[34m"},
}

// PlotTimeline renders series as braille lines over a date axis. Each column
// covers an equal slice of time and shows the mean of the points inside it,
// so idle stretches show up as long straight segments. Non-finite points are
// dropped; a plot without any usable point prints nothing.
func PlotTimeline(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	series = filterSeries(series)
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = autoPlotWidth()
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	span := spanOf(series)
	columns := make([][]float64, len(series))
	ranges := make([]valueRange, len(series))
	for i, s := range series {
		columns[i] = bucketByTime(s.Points, span, width)
		ranges[i] = rangeOf(columns[i])
	}

	seriesCells := make([][][]uint8, len(series))
	for si := range series {
		seriesCells[si] = makeCells(height, width)
		drawColumns(seriesCells[si], columns[si], ranges[si], lineStyles[si%len(lineStyles)], height)
	}

	useColor := shouldUseColor(w, forceColor)
	leftAxisWidth := runewidth.StringWidth(axisLabelTop)
	axisLabels := makeAxisLabels(height)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, scaleNote); err != nil {
		return err
	}
	for i, s := range series {
		if _, err := fmt.Fprintf(w, "%s: min=%.2f max=%.2f\n", s.Name, ranges[i].min, ranges[i].max); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(runewidth.FillLeft(axisLabels[y], leftAxisWidth))
		row.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			mask, colorIdx := composeCell(seriesCells, x, y)
			ch := brailleFromMask(mask)
			if useColor && colorIdx >= 0 {
				row.WriteString(colorPalette[colorIdx%len(colorPalette)].code)
				row.WriteRune(ch)
				row.WriteString(colorReset)
			} else {
				row.WriteRune(ch)
			}
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	indent := strings.Repeat(" ", leftAxisWidth+runewidth.StringWidth(axisSeparator))
	if _, err := fmt.Fprintln(w, indent+dateAxis(span, width)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, renderLegend(series, useColor)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// filterSeries drops non-finite points and empty series, and orders the
// remaining points by time.
func filterSeries(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		points := make([]Point, 0, len(s.Points))
		for _, p := range s.Points {
			if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
				continue
			}
			points = append(points, p)
		}
		if len(points) == 0 {
			continue
		}
		sort.SliceStable(points, func(i, j int) bool {
			return points[i].At.Before(points[j].At)
		})
		out = append(out, Series{Name: s.Name, Points: points})
	}
	return out
}

func spanOf(series []Series) timeSpan {
	span := timeSpan{start: series[0].Points[0].At, end: series[0].Points[0].At}
	for _, s := range series {
		if first := s.Points[0].At; first.Before(span.start) {
			span.start = first
		}
		if last := s.Points[len(s.Points)-1].At; last.After(span.end) {
			span.end = last
		}
	}
	return span
}

// column maps t onto one of width columns. A zero-length span puts every
// point in the first column.
func (s timeSpan) column(t time.Time, width int) int {
	total := s.end.Sub(s.start)
	if total <= 0 || width <= 1 {
		return 0
	}
	x := int(math.Round(float64(t.Sub(s.start)) / float64(total) * float64(width-1)))
	if x < 0 {
		return 0
	}
	if x >= width {
		return width - 1
	}
	return x
}

// at returns the time column x stands for.
func (s timeSpan) at(x, width int) time.Time {
	if width <= 1 {
		return s.start
	}
	offset := float64(s.end.Sub(s.start)) * float64(x) / float64(width-1)
	return s.start.Add(time.Duration(offset))
}

// bucketByTime averages the points falling into each column. Columns without
// points are NaN.
func bucketByTime(points []Point, span timeSpan, width int) []float64 {
	sums := make([]float64, width)
	counts := make([]int, width)
	for _, p := range points {
		x := span.column(p.At, width)
		sums[x] += p.Value
		counts[x]++
	}
	out := make([]float64, width)
	for x := range out {
		if counts[x] == 0 {
			out[x] = math.NaN()
			continue
		}
		out[x] = sums[x] / float64(counts[x])
	}
	return out
}

func rangeOf(columns []float64) valueRange {
	r := valueRange{min: math.Inf(1), max: math.Inf(-1)}
	for _, v := range columns {
		if math.IsNaN(v) {
			continue
		}
		r.min = math.Min(r.min, v)
		r.max = math.Max(r.max, v)
	}
	if math.IsInf(r.min, 1) {
		return valueRange{min: -1, max: 1}
	}
	if math.Abs(r.max-r.min) < 1e-9 {
		r.min--
		r.max++
	}
	return r
}

// drawColumns joins consecutive filled columns with a line.
func drawColumns(cells [][]uint8, columns []float64, r valueRange, style lineStyle, height int) {
	dots := height * 4
	prevX, prevY := -1, -1
	for x, v := range columns {
		if math.IsNaN(v) {
			continue
		}
		px, py := x*2, valueToRow(v, r.min, r.max, dots)
		if prevX >= 0 {
			drawLine(prevX, prevY, px, py, func(dx, dy int) {
				if style.shouldPlot(dx) {
					setBrailleDot(cells, dx, dy)
				}
			})
		} else {
			setBrailleDot(cells, px, py)
		}
		prevX, prevY = px, py
	}
}

// dateAxis labels the first, middle and last column of a plot. Spans shorter
// than a day are labelled with clock times.
func dateAxis(span timeSpan, width int) string {
	layout := dayLabelLayout
	if span.end.Sub(span.start) < 24*time.Hour {
		layout = clockLabelLayout
	}
	axis := []rune(strings.Repeat(" ", width))
	place := func(label string, x int) {
		runes := []rune(label)
		if x < 0 || x+len(runes) > width {
			return
		}
		for _, r := range axis[max(x-1, 0):min(x+len(runes)+1, width)] {
			if r != ' ' {
				return
			}
		}
		copy(axis[x:], runes)
	}
	first := span.start.Format(layout)
	place(first, 0)
	if !span.end.Equal(span.start) {
		last := span.end.Format(layout)
		place(last, width-len([]rune(last)))
		mid := span.at(width/2, width).Format(layout)
		place(mid, width/2-len([]rune(mid))/2)
	}
	return strings.TrimRight(string(axis), " ")
}

func autoPlotWidth() int {
	return PlotWidthFor(terminalWidth())
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axisWidth := runewidth.StringWidth(axisLabelTop) + runewidth.StringWidth(axisSeparator)
	plotWidth := totalWidth - axisWidth
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func makeAxisLabels(height int) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = axisLabelTop
	if height > 2 {
		labels[height/2] = axisLabelMid
	}
	if height > 1 {
		labels[height-1] = axisLabelBottom
	}
	return labels
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return cells
}

// composeCell merges the dots of every series in a cell. The first series
// with a dot there picks the color.
func composeCell(seriesCells [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	colorIdx := -1
	for i, cells := range seriesCells {
		if y < 0 || y >= len(cells) || x < 0 || x >= len(cells[y]) {
			continue
		}
		if cells[y][x] == 0 {
			continue
		}
		if colorIdx == -1 {
			colorIdx = i
		}
		mask |= cells[y][x]
	}
	return mask, colorIdx
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

func valueToRow(v, minVal, maxVal float64, dots int) int {
	if dots <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	row := int(math.Round((1 - pos) * float64(dots-1)))
	if row < 0 {
		return 0
	}
	if row >= dots {
		return dots - 1
	}
	return row
}

func renderLegend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	marker := brailleFromMask(0x01)
	for i, s := range series {
		label := fmt.Sprintf("%c %s (%s, %d points)", marker, s.Name, lineStyles[i%len(lineStyles)].name, len(s.Points))
		if useColor {
			label = colorPalette[i%len(colorPalette)].code + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

// drawLine walks a Bresenham line between two dot positions.
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y0
	if dy > 0 {
		dy = -dy
	}
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if x < 0 || y < 0 {
		return
	}
	cellY, cellX := y/4, x/2
	if cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDots[x%2][y%4]
}

// brailleDots maps a dot column and row inside a cell to its bit in the
// Unicode braille block.
var brailleDots = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
