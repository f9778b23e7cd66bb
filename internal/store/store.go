// Package store handles SQLite persistence of imported score history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/zastari/etterna-graph/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

var ssrColumns = []string{
	"ssr_stream",
	"ssr_jumpstream",
	"ssr_handstream",
	"ssr_stamina",
	"ssr_jackspeed",
	"ssr_chordjack",
	"ssr_technical",
}

// playedAtLayout keeps stored timestamps fixed width so they sort as text.
const playedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for score records.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	// Optional numbers are stored as text: NULL when absent, "NaN" when the
	// save file held something unparsable.
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY,
			score_key TEXT NOT NULL,
			chart_id TEXT NOT NULL,
			song TEXT NOT NULL,
			pack TEXT NOT NULL,
			rate REAL NOT NULL,
			played_at TEXT NOT NULL,
			wife_score TEXT,
			overall TEXT,
			survive_seconds TEXT,
			has_ssrs INTEGER NOT NULL,
			ssr_overall REAL NOT NULL,
			` + strings.Join(ssrColumns, " REAL NOT NULL,\n\t\t\t") + ` REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_scores_played_at ON scores(played_at);`,
		`CREATE INDEX IF NOT EXISTS idx_scores_chart_id ON scores(chart_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceScores replaces the stored history with records.
func (s *Store) ReplaceScores(ctx context.Context, records []model.ScoreRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM scores`); err != nil {
		return err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", 11+len(ssrColumns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO scores (score_key, chart_id, song, pack, rate, played_at, wife_score, overall, survive_seconds, has_ssrs, ssr_overall, %s)
		 VALUES (%s)`, strings.Join(ssrColumns, ", "), placeholders))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	for _, rec := range records {
		args := []any{
			rec.Key,
			rec.ChartID,
			rec.Song,
			rec.Pack,
			rec.Rate,
			rec.PlayedAt.UTC().Format(playedAtLayout),
			encodeFloat(rec.WifeScore),
			encodeFloat(rec.Overall),
			encodeFloat(rec.SurviveSeconds),
		}
		var ssrs model.SkillsetSSRs
		hasSSRs := 0
		if rec.SSRs != nil {
			ssrs = *rec.SSRs
			hasSSRs = 1
		}
		args = append(args, hasSSRs, ssrs.Overall)
		for _, v := range ssrs.Values {
			args = append(args, v)
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CountScores returns the number of stored records.
func (s *Store) CountScores(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scores`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ListScores returns the stored records filtered by stats config, oldest
// first.
func (s *Store) ListScores(ctx context.Context, cfg model.StatsConfig) ([]model.ScoreRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "played_at >= ?")
		args = append(args, cfg.Since.UTC().Format(playedAtLayout))
	}
	query := fmt.Sprintf(`SELECT score_key, chart_id, song, pack, rate, played_at, wife_score, overall, survive_seconds, has_ssrs, ssr_overall, %s
		FROM scores
		WHERE %s
		ORDER BY played_at ASC, id ASC`, strings.Join(ssrColumns, ", "), strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.ScoreRecord
	for rows.Next() {
		var rec model.ScoreRecord
		var playedAt string
		var wife, overall, survive sql.NullString
		var hasSSRs int
		var ssrs model.SkillsetSSRs
		dest := []any{&rec.Key, &rec.ChartID, &rec.Song, &rec.Pack, &rec.Rate, &playedAt, &wife, &overall, &survive, &hasSSRs, &ssrs.Overall}
		for i := range ssrs.Values {
			dest = append(dest, &ssrs.Values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, playedAt)
		if err != nil {
			return nil, err
		}
		rec.PlayedAt = parsed.Local()
		rec.WifeScore = decodeFloat(wife)
		rec.Overall = decodeFloat(overall)
		rec.SurviveSeconds = decodeFloat(survive)
		if hasSSRs != 0 {
			rec.SSRs = &ssrs
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func encodeFloat(v *float64) any {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) {
		return "NaN"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func decodeFloat(v sql.NullString) *float64 {
	if !v.Valid {
		return nil
	}
	f, err := strconv.ParseFloat(v.String, 64)
	if err != nil {
		f = math.NaN()
	}
	return &f
}
