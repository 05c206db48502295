package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dshills/redline/internal/review"
)

// Store wraps a PostgreSQL connection pool. A nil *Store is a valid
// no-op store, so callers can hold one unconditionally.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the database and makes sure the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to history database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging history database: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id          UUID PRIMARY KEY,
			started_at  TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL,
			documents   INT NOT NULL,
			errors      INT NOT NULL,
			warnings    INT NOT NULL,
			notes       INT NOT NULL,
			lines_cached INT NOT NULL,
			segments_cached INT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS run_issues (
			run_id   UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			document TEXT NOT NULL,
			issues   JSONB NOT NULL,
			PRIMARY KEY (run_id, document)
		)`)
	if err != nil {
		return fmt.Errorf("ensuring history schema: %w", err)
	}
	return nil
}

// SaveRun records one report: a runs row plus one run_issues row per
// document. A nil store ignores the call.
func (s *Store) SaveRun(ctx context.Context, report *review.Report) error {
	if s == nil || s.pool == nil {
		return nil
	}

	runID, err := uuid.Parse(report.RunID)
	if err != nil {
		runID = uuid.New()
	}

	finished := time.Now().UTC()
	started := finished.Add(-time.Duration(report.Timing.TotalMs) * time.Millisecond)

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, started_at, finished_at, documents, errors, warnings, notes, lines_cached, segments_cached)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		runID, started, finished,
		report.Cache.FilesChecked,
		report.Summary.Counts.Errors,
		report.Summary.Counts.Warnings,
		report.Summary.Counts.Notes,
		report.Cache.LinesCached,
		report.Cache.SegmentsCached,
	)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	for doc, issues := range IssuesByDocument(report.Issues) {
		data, err := json.Marshal(issues)
		if err != nil {
			return fmt.Errorf("marshaling issues for %s: %w", doc, err)
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO run_issues (run_id, document, issues) VALUES ($1, $2, $3)`,
			runID, doc, data,
		)
		if err != nil {
			return fmt.Errorf("saving issues for %s: %w", doc, err)
		}
	}
	return nil
}

// IssuesByDocument groups issues by their document path.
func IssuesByDocument(issues []review.Issue) map[string][]review.Issue {
	byDoc := make(map[string][]review.Issue)
	for _, iss := range issues {
		byDoc[iss.File] = append(byDoc[iss.File], iss)
	}
	return byDoc
}
