// Package model defines shared data structures.
package model

import "time"

// Skillset is one of the named difficulty categories a chart can exercise.
type Skillset int

// Skillsets in save-file order. NumSkillsets is the count, not a category.
const (
	Stream Skillset = iota
	Jumpstream
	Handstream
	Stamina
	JackSpeed
	Chordjack
	Technical
	NumSkillsets
)

var skillsetNames = [NumSkillsets]string{
	"Stream",
	"Jumpstream",
	"Handstream",
	"Stamina",
	"JackSpeed",
	"Chordjack",
	"Technical",
}

// String returns the save-file name of the skillset.
func (s Skillset) String() string {
	if s < 0 || s >= NumSkillsets {
		return "Unknown"
	}
	return skillsetNames[s]
}

// Skillsets returns all categories in order.
func Skillsets() []Skillset {
	out := make([]Skillset, NumSkillsets)
	for i := range out {
		out[i] = Skillset(i)
	}
	return out
}

// SkillsetSSRs holds the per-skillset ratings of a score. Overall is an
// aggregate and never takes part in dominant-skillset selection.
type SkillsetSSRs struct {
	Overall float64
	Values  [NumSkillsets]float64
}

// Dominant returns the skillset with the highest rating. Ties go to the
// earlier category.
func (s SkillsetSSRs) Dominant() Skillset {
	best := Stream
	for i := 1; i < int(NumSkillsets); i++ {
		if s.Values[i] > s.Values[best] {
			best = Skillset(i)
		}
	}
	return best
}

// ScoreRecord is one play from the score history. Optional values are nil
// when the save data lacks them; a present but unparsable number is NaN.
type ScoreRecord struct {
	Key            string
	ChartID        string
	Song           string
	Pack           string
	Rate           float64
	PlayedAt       time.Time
	WifeScore      *float64
	Overall        *float64
	SSRs           *SkillsetSSRs
	SurviveSeconds *float64
}

// Session is a maximal run of plays without a long pause in between.
type Session struct {
	Scores []*ScoreRecord
}

// Start returns the time of the first play. It identifies the session.
func (s Session) Start() time.Time {
	if len(s.Scores) == 0 {
		return time.Time{}
	}
	return s.Scores[0].PlayedAt
}

// End returns the time of the last play.
func (s Session) End() time.Time {
	if len(s.Scores) == 0 {
		return time.Time{}
	}
	return s.Scores[len(s.Scores)-1].PlayedAt
}

// Duration is the time between the first and the last play.
func (s Session) Duration() time.Duration {
	return s.End().Sub(s.Start())
}

// WeekBucket holds the plays of one ISO calendar week.
type WeekBucket struct {
	Index  int
	Year   int
	Week   int
	Scores []*ScoreRecord
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since          *time.Time
	MinSessionSize int
	TopCharts      int
	ReplaysDir     string
	GreatWindow    float64
	SessionGap     time.Duration
}
