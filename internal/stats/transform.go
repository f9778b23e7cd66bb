package stats

import (
	"math"

	"github.com/zastari/etterna-graph/internal/model"
)

const (
	// skillCalibration scales overall*wifescore towards the in-game skill
	// rating. It was fitted by hand against real profiles, not derived.
	skillCalibration = 0.93
	// accuracyFloor drops scores at or below -400% as corrupt save data.
	accuracyFloor = -400.0
	// manipFloor keeps the log of a manipulation percentage defined.
	manipFloor = 0.01
	// QualifyingWifeScore is the accuracy a play needs to count towards
	// chart play counts.
	QualifyingWifeScore = 0.5
)

// Status tells whether a derived value is usable and, if not, why.
type Status int

const (
	// OK means the value is usable.
	OK Status = iota
	// Missing means a required input was absent or empty.
	Missing
	// Excluded means the input was outside the accepted domain.
	Excluded
	// Malformed means the input was present but unparsable.
	Malformed
	// Unavailable means a required resource could not be read.
	Unavailable
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Missing:
		return "missing"
	case Excluded:
		return "excluded"
	case Malformed:
		return "malformed"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Value is a derived number together with its status.
type Value struct {
	Value  float64
	Status Status
}

// OK reports whether the value is usable.
func (v Value) OK() bool {
	return v.Status == OK
}

func ok(v float64) Value {
	return Value{Value: v, Status: OK}
}

func failed(s Status) Value {
	return Value{Status: s}
}

// Accuracy maps a wifescore onto -log10(100 - percent), which spreads out
// scores close to 100%. Scores above 100% or at/below -400% are excluded.
// A perfect 100% yields +Inf.
func Accuracy(rec *model.ScoreRecord) Value {
	if rec.WifeScore == nil {
		return failed(Missing)
	}
	w := *rec.WifeScore
	if math.IsNaN(w) {
		return failed(Malformed)
	}
	p := w * 100
	if p > 100 || p <= accuracyFloor {
		return failed(Excluded)
	}
	return ok(-math.Log10(100 - p))
}

// ApproximateSkill estimates the skill a play demonstrates. This does not
// model the game's rating calculation.
func ApproximateSkill(rec *model.ScoreRecord) Value {
	if rec.Overall == nil || rec.WifeScore == nil {
		return failed(Missing)
	}
	overall, wife := *rec.Overall, *rec.WifeScore
	skill := overall * wife / skillCalibration
	if math.IsNaN(skill) || math.IsInf(skill, 0) {
		return failed(Malformed)
	}
	return ok(skill)
}

// ManipulationPercent returns the share of notes judged earlier than the
// note before them, in percent, never below 0.01.
func ManipulationPercent(times []float64) Value {
	if len(times) == 0 {
		return failed(Missing)
	}
	manipulated := 0
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			manipulated++
		}
	}
	pct := float64(manipulated) / float64(len(times)) * 100
	if pct < manipFloor {
		pct = manipFloor
	}
	return ok(pct)
}

// LogManip is log10 of ManipulationPercent.
func LogManip(times []float64) Value {
	pct := ManipulationPercent(times)
	if !pct.OK() {
		return pct
	}
	return ok(math.Log10(pct.Value))
}

func qualifies(rec *model.ScoreRecord) bool {
	return rec.WifeScore != nil && *rec.WifeScore > QualifyingWifeScore
}
