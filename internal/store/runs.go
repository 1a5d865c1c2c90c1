package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

// Run is one cached inference result.
type Run struct {
	ID          string
	InputHash   string
	Source      string // query document path, for display
	ReturnTypes []kind.Kind
	Variables   map[string]kind.Kind
	Seq         int64
	CreatedAt   time.Time
}

// WriteRun stores a run and returns it as persisted. ID, Seq and CreatedAt
// are assigned by the store. Writing a run whose input hash already exists
// is a no-op that returns the existing row.
func (s *Store) WriteRun(ctx context.Context, run Run) (Run, error) {
	if run.InputHash == "" {
		return Run{}, fmt.Errorf("write run: input hash is required")
	}

	returnTypes, err := marshalKinds(run.ReturnTypes)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	variables, err := marshalVariables(run.Variables)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return Run{}, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, input_hash, source, return_types, variables, seq, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(input_hash) DO NOTHING
	`,
		s.newID(),
		run.InputHash,
		run.Source,
		returnTypes,
		variables,
		seq,
		s.now().Unix(),
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}

	stored, ok, err := s.LookupRun(ctx, run.InputHash)
	if err != nil {
		return Run{}, err
	}
	if !ok {
		return Run{}, fmt.Errorf("write run: row for %s vanished", run.InputHash)
	}
	return stored, nil
}

// LookupRun returns the run for an input hash.
func (s *Store) LookupRun(ctx context.Context, inputHash string) (Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, input_hash, source, return_types, variables, seq, created_at
		FROM runs
		WHERE input_hash = ?
	`, inputHash)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	return run, true, nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns every run.
//
// Ordering is by seq DESC, id ASC COLLATE BINARY.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	return s.listRuns(ctx, "", nil, limit)
}

// ListRunsFor is ListRuns restricted to runs of one query document.
func (s *Store) ListRunsFor(ctx context.Context, source string, limit int) ([]Run, error) {
	return s.listRuns(ctx, "WHERE source = ?", []any{source}, limit)
}

func (s *Store) listRuns(ctx context.Context, where string, args []any, limit int) ([]Run, error) {
	query := `
		SELECT id, input_hash, source, return_types, variables, seq, created_at
		FROM runs
		` + where + `
		ORDER BY seq DESC, id COLLATE BINARY ASC
	`
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run         Run
		returnTypes string
		variables   string
		createdAt   int64
	)
	if err := sc.Scan(&run.ID, &run.InputHash, &run.Source, &returnTypes, &variables, &run.Seq, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	var err error
	if run.ReturnTypes, err = unmarshalKinds(returnTypes); err != nil {
		return Run{}, err
	}
	if run.Variables, err = unmarshalVariables(variables); err != nil {
		return Run{}, err
	}
	run.CreatedAt = time.Unix(createdAt, 0).UTC()
	return run, nil
}
