package etterna

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zastari/etterna-graph/internal/model"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<Stats>
<GeneralData><DisplayName>player</DisplayName></GeneralData>
<PlayerScores>
<Chart Key="Xaaa" Pack="Pack A" Song="First Song" Steps="Challenge">
	<ScoresAt Grade="Tier04" Rate="1.0">
		<Score Key="S111">
			<SSRCalcVersion>263</SSRCalcVersion>
			<Grade>Tier04</Grade>
			<WifeScore>0.951</WifeScore>
			<SSRNormPercent>0.95</SSRNormPercent>
			<SurviveSeconds>131.5</SurviveSeconds>
			<SkillsetSSRs>
				<Overall>25.10</Overall>
				<Stream>24.00</Stream>
				<Jumpstream>25.10</Jumpstream>
				<Handstream>23.90</Handstream>
				<Stamina>22.00</Stamina>
				<JackSpeed>15.00</JackSpeed>
				<Chordjack>20.50</Chordjack>
				<Technical>24.80</Technical>
			</SkillsetSSRs>
			<DateTime>2020-11-03 21:14:05</DateTime>
		</Score>
	</ScoresAt>
	<ScoresAt Grade="Tier07" Rate="1.2">
		<Score Key="S222">
			<WifeScore>oops</WifeScore>
			<DateTime>2020-11-03 21:20:00</DateTime>
		</Score>
		<Score Key="S333">
			<WifeScore>0.8</WifeScore>
			<DateTime>not a date</DateTime>
		</Score>
	</ScoresAt>
</Chart>
<Chart Key="Xbbb" Pack="Pack B" Song="Second Song">
	<ScoresAt Rate="0.9">
		<Score Key="S444">
			<WifeScore>0.5</WifeScore>
			<DateTime>2020-11-05 08:00:00</DateTime>
		</Score>
	</ScoresAt>
</Chart>
</PlayerScores>
</Stats>`

func TestParse(t *testing.T) {
	res, err := Parse(strings.NewReader(sampleXML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Skipped != 1 {
		t.Fatalf("expected 1 skipped score, got %d", res.Skipped)
	}
	if len(res.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(res.Records))
	}

	first := res.Records[0]
	if first.Key != "S111" || first.ChartID != "Xaaa" || first.Song != "First Song" || first.Pack != "Pack A" {
		t.Fatalf("unexpected identifiers: %+v", first)
	}
	want := time.Date(2020, 11, 3, 21, 14, 5, 0, time.Local)
	if !first.PlayedAt.Equal(want) {
		t.Fatalf("expected %v, got %v", want, first.PlayedAt)
	}
	if first.WifeScore == nil || *first.WifeScore != 0.951 {
		t.Fatalf("unexpected wifescore %v", first.WifeScore)
	}
	if first.Overall == nil || *first.Overall != 25.10 {
		t.Fatalf("unexpected overall %v", first.Overall)
	}
	if first.SurviveSeconds == nil || *first.SurviveSeconds != 131.5 {
		t.Fatalf("unexpected survive seconds %v", first.SurviveSeconds)
	}
	if first.SSRs == nil || first.SSRs.Dominant() != model.Jumpstream {
		t.Fatalf("unexpected ssrs %+v", first.SSRs)
	}

	second := res.Records[1]
	if second.Rate != 1.2 {
		t.Fatalf("expected rate 1.2, got %v", second.Rate)
	}
	if second.WifeScore == nil || !math.IsNaN(*second.WifeScore) {
		t.Fatalf("expected malformed wifescore as NaN, got %v", second.WifeScore)
	}
	if second.SSRs != nil || second.Overall != nil || second.SurviveSeconds != nil {
		t.Fatalf("expected absent fields to be nil: %+v", second)
	}

	if res.Records[2].ChartID != "Xbbb" || res.Records[2].Rate != 0.9 {
		t.Fatalf("unexpected third record %+v", res.Records[2])
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Etterna.xml")
	if err := os.WriteFile(path, []byte(sampleXML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	res, err := ParseFile(path)
	if err != nil {
		t.Fatalf("parse file: %v", err)
	}
	if len(res.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(res.Records))
	}
	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.xml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParseRejectsBrokenDocument(t *testing.T) {
	if _, err := Parse(strings.NewReader("<Stats><PlayerScores>")); err == nil {
		t.Fatalf("expected decode error")
	}
}
