// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gabrielfu/reqbench/internal/connstr"
	"github.com/gabrielfu/reqbench/pkg/benchreport"
	"github.com/gabrielfu/reqbench/pkg/db"
)

const applicationName = "reqbench"

const uniqueViolationErrorCode pq.ErrorCode = "23505"

const sqlInit = `
CREATE SCHEMA IF NOT EXISTS %[1]s;

CREATE TABLE IF NOT EXISTS %[1]s.runs (
	id			UUID PRIMARY KEY,
	recorded_at	TIMESTAMPTZ NOT NULL,
	git_sha		TEXT NOT NULL DEFAULT '',
	source		TEXT NOT NULL DEFAULT '',
	attack		JSONB,
	created_at	TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS %[1]s.reports (
	run_id	UUID NOT NULL REFERENCES %[1]s.runs(id) ON DELETE CASCADE,
	target	TEXT NOT NULL,
	mode	TEXT NOT NULL,
	report	JSONB NOT NULL,

	PRIMARY KEY (run_id, target, mode)
);

CREATE INDEX IF NOT EXISTS reports_by_series ON %[1]s.reports (target, mode);

CREATE TABLE IF NOT EXISTS %[1]s.baselines (
	target	TEXT NOT NULL,
	mode	TEXT NOT NULL,
	run_id	UUID NOT NULL REFERENCES %[1]s.runs(id) ON DELETE CASCADE,
	set_at	TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,

	PRIMARY KEY (target, mode)
);

CREATE TABLE IF NOT EXISTS %[1]s.reqbench_version (
	version			TEXT NOT NULL,
	initialized_at	TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store records benchmark runs, their per-target reports and the baselines
// used by the regression gate in a dedicated Postgres schema.
type Store struct {
	pgConn db.DB

	// the schema under which the store tables live
	schema string

	reqbenchVersion string
	lockTimeoutMs   int
	logger          Logger
}

// RunSummary is a single row of `ListRuns` output.
type RunSummary struct {
	ID         uuid.UUID `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`
	GitSHA     string    `json:"git_sha,omitempty"`
	Source     string    `json:"source,omitempty"`
	Reports    int       `json:"reports"`
}

// Status describes the current state of the store schema.
type Status struct {
	// The schema in which the store tables live.
	Schema string `json:"schema"`

	// Whether the store has been initialized.
	Initialized bool `json:"initialized"`

	// The reqbench version that initialized the store schema.
	Version string `json:"version,omitempty"`

	// The number of recorded runs.
	Runs int `json:"runs"`

	// The number of baselines currently set.
	Baselines int `json:"baselines"`

	// The most recently recorded run, if any.
	LatestRun *RunSummary `json:"latest_run,omitempty"`
}

func New(ctx context.Context, pgURL, storeSchema string, opts ...StoreOpt) (*Store, error) {
	s := &Store{
		schema:          storeSchema,
		reqbenchVersion: "development",
		logger:          NewNoopLogger(),
	}
	for _, o := range opts {
		o(s)
	}

	dsn, err := connstr.AppendApplicationName(pgURL, applicationName)
	if err != nil {
		return nil, fmt.Errorf("unable to build connection string: %w", err)
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := conn.PingContext(ctx); err != nil {
		return nil, err
	}

	if s.lockTimeoutMs > 0 {
		_, err = conn.ExecContext(ctx, fmt.Sprintf("SET lock_timeout to '%dms'", s.lockTimeoutMs))
		if err != nil {
			return nil, fmt.Errorf("unable to set lock_timeout: %w", err)
		}
	}

	s.pgConn = &db.RDB{DB: conn}

	return s, nil
}

// Init creates the store schema and tables and records the reqbench version
// that performed the initialization. It is safe to call on an already
// initialized store.
func (s *Store) Init(ctx context.Context) error {
	return s.pgConn.WithRetryableTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, fmt.Sprintf(sqlInit, pq.QuoteIdentifier(s.schema)))
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s.reqbench_version (version) VALUES ($1)",
				pq.QuoteIdentifier(s.schema)), s.reqbenchVersion)

		return err
	})
}

// IsInitialized returns true if the store schema and tables exist.
func (s *Store) IsInitialized(ctx context.Context) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM information_schema.tables
		WHERE table_schema = $1 AND table_name = 'runs'
	)`

	var initialized bool
	rows, err := s.pgConn.QueryContext(ctx, query, s.schema)
	if err != nil {
		return false, err
	}

	if err := db.ScanFirstValue(rows, &initialized); err != nil {
		return false, err
	}

	return initialized, nil
}

func (s *Store) Close() error {
	return s.pgConn.Close()
}

// RecordRun stores a run and all of its reports in a single transaction.
// Recording a run whose ID is already present fails with
// RunAlreadyExistsError.
func (s *Store) RecordRun(ctx context.Context, run *benchreport.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("invalid run: %w", err)
	}

	var attack []byte
	if run.Attack != nil {
		var err error
		attack, err = json.Marshal(run.Attack)
		if err != nil {
			return fmt.Errorf("unable to marshal attack spec: %w", err)
		}
	}

	err := s.pgConn.WithRetryableTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s.runs (id, recorded_at, git_sha, source, attack) VALUES ($1, $2, $3, $4, $5)",
				pq.QuoteIdentifier(s.schema)),
			run.ID, run.RecordedAt, run.GitSHA, run.Source, attack)
		if err != nil {
			return err
		}

		for i := range run.Reports {
			report := &run.Reports[i]

			rawReport, err := json.Marshal(report)
			if err != nil {
				return fmt.Errorf("unable to marshal report: %w", err)
			}

			_, err = tx.ExecContext(ctx,
				fmt.Sprintf("INSERT INTO %s.reports (run_id, target, mode, report) VALUES ($1, $2, $3, $4)",
					pq.QuoteIdentifier(s.schema)),
				run.ID, report.Target, string(report.Mode), rawReport)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationErrorCode {
			return RunAlreadyExistsError{ID: run.ID}
		}
		return err
	}

	s.logger.LogRunRecorded(run)

	return nil
}

// GetRun retrieves a run and all of its reports by ID.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*benchreport.Run, error) {
	run := &benchreport.Run{ID: id}

	var rawAttack []byte
	rows, err := s.pgConn.QueryContext(ctx,
		fmt.Sprintf("SELECT recorded_at, git_sha, source, attack FROM %s.runs WHERE id=$1",
			pq.QuoteIdentifier(s.schema)), id)
	if err != nil {
		return nil, err
	}

	found := false
	for rows.Next() {
		if err := rows.Scan(&run.RecordedAt, &run.GitSHA, &run.Source, &rawAttack); err != nil {
			rows.Close()
			return nil, fmt.Errorf("row scan: %w", err)
		}
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	if !found {
		return nil, RunNotFoundError{ID: id}
	}

	if rawAttack != nil {
		run.Attack = &benchreport.AttackSpec{}
		if err := json.Unmarshal(rawAttack, run.Attack); err != nil {
			return nil, fmt.Errorf("unable to unmarshal attack spec: %w", err)
		}
	}

	rows, err = s.pgConn.QueryContext(ctx,
		fmt.Sprintf("SELECT report FROM %s.reports WHERE run_id=$1 ORDER BY target, mode",
			pq.QuoteIdentifier(s.schema)), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rawReport []byte
		if err := rows.Scan(&rawReport); err != nil {
			return nil, fmt.Errorf("row scan: %w", err)
		}

		var report benchreport.Report
		if err := json.Unmarshal(rawReport, &report); err != nil {
			return nil, fmt.Errorf("unable to unmarshal report: %w", err)
		}

		run.Reports = append(run.Reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return run, nil
}

// LatestRun retrieves the most recently recorded run. It returns ErrNoRuns
// when the store is empty.
func (s *Store) LatestRun(ctx context.Context) (*benchreport.Run, error) {
	rows, err := s.pgConn.QueryContext(ctx,
		fmt.Sprintf("SELECT id FROM %s.runs ORDER BY recorded_at DESC LIMIT 1",
			pq.QuoteIdentifier(s.schema)))
	if err != nil {
		return nil, err
	}

	var id uuid.UUID
	if err := db.ScanFirstValue(rows, &id); err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, ErrNoRuns
	}

	return s.GetRun(ctx, id)
}

// ListRuns returns summaries of recorded runs in descending recorded_at
// order. A limit of zero or less returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}

	rows, err := s.pgConn.QueryContext(ctx,
		fmt.Sprintf(`SELECT r.id, r.recorded_at, r.git_sha, r.source, count(p.run_id)
			FROM %[1]s.runs r
			LEFT JOIN %[1]s.reports p ON p.run_id = r.id
			GROUP BY r.id, r.recorded_at, r.git_sha, r.source
			ORDER BY r.recorded_at DESC
			LIMIT $1`,
			pq.QuoteIdentifier(s.schema)), lim)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var summary RunSummary
		if err := rows.Scan(&summary.ID, &summary.RecordedAt, &summary.GitSHA, &summary.Source, &summary.Reports); err != nil {
			return nil, fmt.Errorf("row scan: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return summaries, nil
}

// DeleteRun removes a run, its reports and any baselines that reference it.
func (s *Store) DeleteRun(ctx context.Context, id uuid.UUID) error {
	res, err := s.pgConn.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s.runs WHERE id=$1", pq.QuoteIdentifier(s.schema)), id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return RunNotFoundError{ID: id}
	}

	s.logger.LogRunDeleted(id)

	return nil
}

// Status reports the current state of the store schema.
func (s *Store) Status(ctx context.Context) (*Status, error) {
	status := &Status{Schema: s.schema}

	initialized, err := s.IsInitialized(ctx)
	if err != nil {
		return nil, err
	}
	status.Initialized = initialized

	if !initialized {
		return status, nil
	}

	version, err := s.SchemaVersion(ctx)
	if err != nil {
		return nil, err
	}
	status.Version = version

	rows, err := s.pgConn.QueryContext(ctx,
		fmt.Sprintf("SELECT count(*) FROM %s.runs", pq.QuoteIdentifier(s.schema)))
	if err != nil {
		return nil, err
	}
	if err := db.ScanFirstValue(rows, &status.Runs); err != nil {
		return nil, err
	}

	rows, err = s.pgConn.QueryContext(ctx,
		fmt.Sprintf("SELECT count(*) FROM %s.baselines", pq.QuoteIdentifier(s.schema)))
	if err != nil {
		return nil, err
	}
	if err := db.ScanFirstValue(rows, &status.Baselines); err != nil {
		return nil, err
	}

	summaries, err := s.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(summaries) > 0 {
		status.LatestRun = &summaries[0]
	}

	return status, nil
}
