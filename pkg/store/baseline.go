// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gabrielfu/reqbench/pkg/benchreport"
	"github.com/gabrielfu/reqbench/pkg/db"
)

// BaselineEntry is the baseline report currently set for a (target, mode)
// pair, along with the run it was taken from.
type BaselineEntry struct {
	Target string             `json:"target"`
	Mode   benchreport.Mode   `json:"mode"`
	RunID  uuid.UUID          `json:"run_id"`
	SetAt  time.Time          `json:"set_at"`
	Report benchreport.Report `json:"report"`
}

// SetBaseline marks the report recorded by `runID` for (target, mode) as the
// baseline for that series, replacing any previous baseline.
func (s *Store) SetBaseline(ctx context.Context, target string, mode benchreport.Mode, runID uuid.UUID) error {
	rows, err := s.pgConn.QueryContext(ctx,
		fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s.reports WHERE run_id=$1 AND target=$2 AND mode=$3)",
			pq.QuoteIdentifier(s.schema)), runID, target, string(mode))
	if err != nil {
		return err
	}

	var exists bool
	if err := db.ScanFirstValue(rows, &exists); err != nil {
		return err
	}
	if !exists {
		return ReportNotRecordedError{RunID: runID, Target: target, Mode: string(mode)}
	}

	_, err = s.pgConn.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s.baselines (target, mode, run_id) VALUES ($1, $2, $3)
			ON CONFLICT (target, mode)
			DO UPDATE SET run_id=EXCLUDED.run_id, set_at=CURRENT_TIMESTAMP`,
			pq.QuoteIdentifier(s.schema)), target, string(mode), runID)
	if err != nil {
		return err
	}

	s.logger.LogBaselineSet(target, string(mode), runID)

	return nil
}

// Baseline retrieves the baseline for a (target, mode) pair. It returns
// ErrNoBaseline when no baseline has been set.
func (s *Store) Baseline(ctx context.Context, target string, mode benchreport.Mode) (*BaselineEntry, error) {
	rows, err := s.pgConn.QueryContext(ctx,
		fmt.Sprintf(`SELECT b.run_id, b.set_at, p.report
			FROM %[1]s.baselines b
			JOIN %[1]s.reports p ON p.run_id = b.run_id AND p.target = b.target AND p.mode = b.mode
			WHERE b.target=$1 AND b.mode=$2`,
			pq.QuoteIdentifier(s.schema)), target, string(mode))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterating rows: %w", err)
		}
		return nil, ErrNoBaseline
	}

	entry := BaselineEntry{Target: target, Mode: mode}

	var rawReport []byte
	if err := rows.Scan(&entry.RunID, &entry.SetAt, &rawReport); err != nil {
		return nil, fmt.Errorf("row scan: %w", err)
	}

	if err := json.Unmarshal(rawReport, &entry.Report); err != nil {
		return nil, fmt.Errorf("unable to unmarshal report: %w", err)
	}

	return &entry, nil
}

// Baselines lists all baselines currently set, ordered by target then mode.
func (s *Store) Baselines(ctx context.Context) ([]BaselineEntry, error) {
	rows, err := s.pgConn.QueryContext(ctx,
		fmt.Sprintf(`SELECT b.target, b.mode, b.run_id, b.set_at, p.report
			FROM %[1]s.baselines b
			JOIN %[1]s.reports p ON p.run_id = b.run_id AND p.target = b.target AND p.mode = b.mode
			ORDER BY b.target, b.mode`,
			pq.QuoteIdentifier(s.schema)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []BaselineEntry
	for rows.Next() {
		var entry BaselineEntry
		var mode string
		var rawReport []byte

		if err := rows.Scan(&entry.Target, &mode, &entry.RunID, &entry.SetAt, &rawReport); err != nil {
			return nil, fmt.Errorf("row scan: %w", err)
		}
		entry.Mode = benchreport.Mode(mode)

		if err := json.Unmarshal(rawReport, &entry.Report); err != nil {
			return nil, fmt.Errorf("unable to unmarshal report: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return entries, nil
}
