package stats

import (
	"math"
	"testing"

	"github.com/zastari/etterna-graph/internal/model"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestAccuracy(t *testing.T) {
	cases := []struct {
		name   string
		wife   *float64
		status Status
		value  float64
	}{
		{name: "missing", wife: nil, status: Missing},
		{name: "malformed", wife: floatPtr(math.NaN()), status: Malformed},
		{name: "above 100", wife: floatPtr(1.0001), status: Excluded},
		{name: "at floor", wife: floatPtr(-4), status: Excluded},
		{name: "90%", wife: floatPtr(0.9), status: OK, value: -1},
		{name: "just above floor", wife: floatPtr(-3.99), status: OK, value: -math.Log10(499)},
	}
	for _, tc := range cases {
		got := Accuracy(&model.ScoreRecord{WifeScore: tc.wife})
		if got.Status != tc.status {
			t.Fatalf("%s: expected status %s, got %s", tc.name, tc.status, got.Status)
		}
		if tc.status == OK && math.Abs(got.Value-tc.value) > 1e-9 {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.value, got.Value)
		}
	}
}

func TestAccuracyPerfectIsInfinite(t *testing.T) {
	got := Accuracy(&model.ScoreRecord{WifeScore: floatPtr(1)})
	if !got.OK() || !math.IsInf(got.Value, 1) {
		t.Fatalf("expected +Inf, got %+v", got)
	}
}

func TestAccuracyIsMonotonic(t *testing.T) {
	prev := math.Inf(-1)
	for _, w := range []float64{-3, -1, 0, 0.5, 0.9, 0.93, 0.99, 0.9997} {
		got := Accuracy(&model.ScoreRecord{WifeScore: floatPtr(w)})
		if !got.OK() {
			t.Fatalf("expected ok for %v, got %s", w, got.Status)
		}
		if got.Value <= prev {
			t.Fatalf("expected increasing values, %v gave %v after %v", w, got.Value, prev)
		}
		prev = got.Value
	}
}

func TestApproximateSkill(t *testing.T) {
	got := ApproximateSkill(&model.ScoreRecord{Overall: floatPtr(25), WifeScore: floatPtr(0.93)})
	if !got.OK() || math.Abs(got.Value-25) > 1e-9 {
		t.Fatalf("expected 25, got %+v", got)
	}
	if got := ApproximateSkill(&model.ScoreRecord{WifeScore: floatPtr(0.9)}); got.Status != Missing {
		t.Fatalf("expected missing overall, got %s", got.Status)
	}
	if got := ApproximateSkill(&model.ScoreRecord{Overall: floatPtr(math.NaN()), WifeScore: floatPtr(0.9)}); got.Status != Malformed {
		t.Fatalf("expected malformed overall, got %s", got.Status)
	}
	if got := ApproximateSkill(&model.ScoreRecord{Overall: floatPtr(math.Inf(1)), WifeScore: floatPtr(0)}); got.Status != Malformed {
		t.Fatalf("expected malformed for infinite overall, got %+v", got)
	}
	if got := ApproximateSkill(&model.ScoreRecord{Overall: floatPtr(math.Inf(1)), WifeScore: floatPtr(0.9)}); got.Status != Malformed {
		t.Fatalf("expected malformed for infinite skill, got %+v", got)
	}
}

func TestManipulation(t *testing.T) {
	pct := ManipulationPercent([]float64{1, 2, 3})
	if !pct.OK() || pct.Value != 0.01 {
		t.Fatalf("expected floor 0.01, got %+v", pct)
	}
	logManip := LogManip([]float64{1, 2, 3})
	if !logManip.OK() || math.Abs(logManip.Value+2) > 1e-9 {
		t.Fatalf("expected -2, got %+v", logManip)
	}
	pct = ManipulationPercent([]float64{2, 1, 3})
	if !pct.OK() || math.Abs(pct.Value-100.0/3) > 1e-9 {
		t.Fatalf("expected 33.33, got %+v", pct)
	}
	if got := LogManip(nil); got.Status != Missing {
		t.Fatalf("expected missing for empty replay, got %s", got.Status)
	}
}

func TestManipulationBounds(t *testing.T) {
	inputs := [][]float64{{5}, {5, 4, 3, 2, 1}, {1, 1, 1}, {3, 1, 2, 0}}
	for _, times := range inputs {
		pct := ManipulationPercent(times)
		if !pct.OK() || pct.Value < 0.01 || pct.Value >= 100 {
			t.Fatalf("percentage out of range for %v: %+v", times, pct)
		}
	}
}
