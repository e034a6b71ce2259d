// Package archive keeps reconstruction reports in a SQLite file.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/peterkuimelis/spiredeck/internal/archive/migrations"
	"github.com/peterkuimelis/spiredeck/internal/report"
)

// ErrNotFound is returned when no report has the requested ID.
var ErrNotFound = errors.New("report not found")

// Summary is the list form of an archived report.
type Summary struct {
	ID              string    `json:"id"`
	Character       string    `json:"character"`
	FloorReached    int       `json:"floor_reached"`
	Victory         bool      `json:"victory"`
	Consistent      bool      `json:"consistent"`
	UnknownObtained int       `json:"unknown_obtained"`
	UnknownRemoved  int       `json:"unknown_removed"`
	CreatedAt       time.Time `json:"created_at"`
}

// Store persists reports in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the archive at path and applies pending migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("archive path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveReport inserts r, replacing any report with the same ID.
func (s *Store) SaveReport(ctx context.Context, r *report.Report) error {
	if r == nil || strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("report id is required")
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (
		   id, character, floor_reached, victory, consistent,
		   unknown_obtained, unknown_removed, payload, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   character = excluded.character,
		   floor_reached = excluded.floor_reached,
		   victory = excluded.victory,
		   consistent = excluded.consistent,
		   unknown_obtained = excluded.unknown_obtained,
		   unknown_removed = excluded.unknown_removed,
		   payload = excluded.payload,
		   created_at = excluded.created_at`,
		r.ID,
		r.Character,
		r.FloorReached,
		r.Victory,
		r.Consistent,
		len(r.UnknownObtained),
		len(r.UnknownRemoved),
		string(payload),
		createdAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save report %s: %w", r.ID, err)
	}
	return nil
}

// GetReport loads the report with the given ID.
func (s *Store) GetReport(ctx context.Context, id string) (*report.Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM reports WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}

	var r report.Report
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &r, nil
}

// ListReports returns up to limit summaries, newest first. A limit of zero
// or less means no limit.
func (s *Store) ListReports(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, character, floor_reached, victory, consistent,
		        unknown_obtained, unknown_removed, created_at
		   FROM reports
		  ORDER BY created_at DESC, id
		  LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var (
			sum       Summary
			createdAt int64
		)
		if err := rows.Scan(
			&sum.ID,
			&sum.Character,
			&sum.FloorReached,
			&sum.Victory,
			&sum.Consistent,
			&sum.UnknownObtained,
			&sum.UnknownRemoved,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		sum.CreatedAt = time.UnixMilli(createdAt).UTC()
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return summaries, nil
}
