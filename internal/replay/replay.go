// Package replay reads per-note replay timing streams and accumulates
// combo statistics across replays.
package replay

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// DefaultGreatWindow is the timing boundary in seconds of the in-game Great
// judgement. Hits with a deviation above it break the combo.
const DefaultGreatWindow = 0.09

// Timings holds the usable values of one replay stream, in stream order.
type Timings struct {
	Times      []float64
	Deviations []float64
}

// ReadTimings parses replay lines of the form "<time> <deviation> ...".
// Fields that fail to parse are skipped independently of each other. Lines
// have no length limit.
func ReadTimings(r io.Reader) (Timings, error) {
	var t Timings
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			t.addLine(line)
		}
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return Timings{}, err
		}
	}
}

func (t *Timings) addLine(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	if v, err := strconv.ParseFloat(fields[0], 64); err == nil {
		t.Times = append(t.Times, v)
	}
	if len(fields) < 2 {
		return
	}
	if v, err := strconv.ParseFloat(fields[1], 64); err == nil {
		t.Deviations = append(t.Deviations, v)
	}
}

// ComboHistogram counts how often each combo length was reached and broken.
// The zero value is ready to use. It is not safe for concurrent use.
type ComboHistogram struct {
	base   []int
	breaks []int
}

// Add runs the combo state machine over the deviations of one replay.
func (h *ComboHistogram) Add(deviations []float64, greatWindow float64) {
	if len(deviations) == 0 {
		return
	}
	combo := 0
	for _, d := range deviations {
		h.bumpBase(combo)
		if d <= greatWindow {
			combo++
			continue
		}
		h.bumpBreak(combo)
		combo = 0
	}
	// Record the combo the play ended on.
	h.bumpBase(combo)
}

// Base returns how many times a combo of length n was reached.
func (h *ComboHistogram) Base(n int) int {
	if n < 0 || n >= len(h.base) {
		return 0
	}
	return h.base[n]
}

// Breaks returns how many times a combo of exactly length n was broken.
func (h *ComboHistogram) Breaks(n int) int {
	if n < 0 || n >= len(h.breaks) {
		return 0
	}
	return h.breaks[n]
}

// MaxCombo returns the first combo length of at least 1 that no play reached.
func (h *ComboHistogram) MaxCombo() int {
	n := 1
	for h.Base(n) != 0 {
		n++
	}
	return n
}

// BreakProbability is the chance of a combo breaking at a given length.
type BreakProbability struct {
	Combo       int
	Reached     int
	Broken      int
	Probability float64
}

// Probabilities returns the break probability of every combo length below
// MaxCombo. Lengths that were never reached are left out.
func (h *ComboHistogram) Probabilities() []BreakProbability {
	maxCombo := h.MaxCombo()
	out := make([]BreakProbability, 0, maxCombo)
	for n := 0; n < maxCombo; n++ {
		reached := h.Base(n)
		if reached == 0 {
			continue
		}
		broken := h.Breaks(n)
		out = append(out, BreakProbability{
			Combo:       n,
			Reached:     reached,
			Broken:      broken,
			Probability: float64(broken) / float64(reached),
		})
	}
	return out
}

func (h *ComboHistogram) bumpBase(n int) {
	for len(h.base) <= n {
		h.base = append(h.base, 0)
	}
	h.base[n]++
}

func (h *ComboHistogram) bumpBreak(n int) {
	for len(h.breaks) <= n {
		h.breaks = append(h.breaks, 0)
	}
	h.breaks[n]++
}
