// Package history keeps a durable record of simulation runs in SQLite.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// Run is one recorded simulation.
type Run struct {
	RunID      string
	Model      string
	StopReason string
	SimTime    uint64
	ClockTicks uint64
	TracePath  string
	StartedAt  time.Time
	EndedAt    time.Time
}

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open history database")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "connect history database")
	}
	// single writer
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "apply history schema")
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Record inserts a run. Recording the same RunID twice is an error.
func (s *Store) Record(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, model, stop_reason, sim_time, clock_ticks, trace_path, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Model, r.StopReason, int64(r.SimTime), int64(r.ClockTicks), r.TracePath,
		r.StartedAt.UnixNano(), r.EndedAt.UnixNano())
	return errors.Wrapf(err, "record run %s", r.RunID)
}

// List returns up to limit runs, most recently started first. limit <= 0
// returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT run_id, model, stop_reason, sim_time, clock_ticks, trace_path, started_at, ended_at
	      FROM runs ORDER BY started_at DESC, run_id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                  Run
			simTime, ticks     int64
			startedNs, endedNs int64
		)
		if err := rows.Scan(&r.RunID, &r.Model, &r.StopReason, &simTime, &ticks, &r.TracePath, &startedNs, &endedNs); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		r.SimTime, r.ClockTicks = uint64(simTime), uint64(ticks)
		r.StartedAt, r.EndedAt = time.Unix(0, startedNs), time.Unix(0, endedNs)
		runs = append(runs, r)
	}
	return runs, errors.Wrap(rows.Err(), "iterate runs")
}
