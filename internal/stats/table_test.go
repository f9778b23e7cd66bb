package stats

import (
	"bytes"
	"testing"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Song", "Plays", "Pack"}
	rows := [][]string{
		{"Ouroboros", "12", "Pack A"},
		{"Tiny", "3", "B"},
	}
	rightAlign := map[int]bool{1: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Song      Plays Pack  " {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Ouroboros    12 Pack A" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Tiny          3 B     " {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Song", "N"}, [][]string{{"曲名", "1"}}, nil)
	if lines[0] != "Song N" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "曲名 1" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := writeTable(&buf, "Title", []string{"A"}, [][]string{{"x"}}, nil); err != nil {
		t.Fatalf("write table: %v", err)
	}
	if buf.String() != "Title\nA\nx\n\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
