// Package etterna reads score history from an Etterna.xml save file.
package etterna

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zastari/etterna-graph/internal/model"
)

const dateTimeLayout = "2006-01-02 15:04:05"

type xmlStats struct {
	Charts []xmlChart `xml:"PlayerScores>Chart"`
}

type xmlChart struct {
	Key   string    `xml:"Key,attr"`
	Song  string    `xml:"Song,attr"`
	Pack  string    `xml:"Pack,attr"`
	Rates []xmlRate `xml:"ScoresAt"`
}

type xmlRate struct {
	Rate   string     `xml:"Rate,attr"`
	Scores []xmlScore `xml:"Score"`
}

type xmlScore struct {
	Key            string   `xml:"Key,attr"`
	WifeScore      string   `xml:"WifeScore"`
	SurviveSeconds string   `xml:"SurviveSeconds"`
	DateTime       string   `xml:"DateTime"`
	SSRs           *xmlSSRs `xml:"SkillsetSSRs"`
}

type xmlSSRs struct {
	Overall    string `xml:"Overall"`
	Stream     string `xml:"Stream"`
	Jumpstream string `xml:"Jumpstream"`
	Handstream string `xml:"Handstream"`
	Stamina    string `xml:"Stamina"`
	JackSpeed  string `xml:"JackSpeed"`
	Chordjack  string `xml:"Chordjack"`
	Technical  string `xml:"Technical"`
}

// Result is the outcome of reading a save file.
type Result struct {
	Records []model.ScoreRecord
	// Skipped counts scores without a usable DateTime.
	Skipped int
}

// ParseFile reads the save file at path.
func ParseFile(path string) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only save file.
			_ = cerr
		}
	}()
	return Parse(file)
}

// Parse reads an Etterna.xml document. Play times are interpreted in the
// local time zone, like the game writes them.
func Parse(r io.Reader) (Result, error) {
	var doc xmlStats
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return Result{}, fmt.Errorf("failed to decode save file: %w", err)
	}
	var res Result
	for _, chart := range doc.Charts {
		for _, rate := range chart.Rates {
			rateValue := 1.0
			if v := optionalFloat(rate.Rate); v != nil && !math.IsNaN(*v) {
				rateValue = *v
			}
			for _, score := range rate.Scores {
				playedAt, err := time.ParseInLocation(dateTimeLayout, strings.TrimSpace(score.DateTime), time.Local)
				if err != nil {
					res.Skipped++
					continue
				}
				rec := model.ScoreRecord{
					Key:            score.Key,
					ChartID:        chart.Key,
					Song:           chart.Song,
					Pack:           chart.Pack,
					Rate:           rateValue,
					PlayedAt:       playedAt,
					WifeScore:      optionalFloat(score.WifeScore),
					SurviveSeconds: optionalFloat(score.SurviveSeconds),
				}
				if score.SSRs != nil {
					rec.Overall = optionalFloat(score.SSRs.Overall)
					rec.SSRs = score.SSRs.toModel()
				}
				res.Records = append(res.Records, rec)
			}
		}
	}
	return res, nil
}

func (x *xmlSSRs) toModel() *model.SkillsetSSRs {
	raw := [model.NumSkillsets]string{
		model.Stream:     x.Stream,
		model.Jumpstream: x.Jumpstream,
		model.Handstream: x.Handstream,
		model.Stamina:    x.Stamina,
		model.JackSpeed:  x.JackSpeed,
		model.Chordjack:  x.Chordjack,
		model.Technical:  x.Technical,
	}
	var ssrs model.SkillsetSSRs
	present := false
	for i, s := range raw {
		v := optionalFloat(s)
		if v == nil || math.IsNaN(*v) {
			continue
		}
		ssrs.Values[i] = *v
		present = true
	}
	if !present {
		return nil
	}
	if v := optionalFloat(x.Overall); v != nil && !math.IsNaN(*v) {
		ssrs.Overall = *v
	}
	return &ssrs
}

// optionalFloat returns nil for an empty value and NaN for an unparsable
// one.
func optionalFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		v = math.NaN()
	}
	return &v
}
