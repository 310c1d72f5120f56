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
)

// HistoryEntry is a single report in the history of a (target, mode) series.
type HistoryEntry struct {
	RunID      uuid.UUID          `json:"run_id"`
	RecordedAt time.Time          `json:"recorded_at"`
	GitSHA     string             `json:"git_sha,omitempty"`
	Report     benchreport.Report `json:"report"`
}

// ReportHistory returns the reports recorded for a (target, mode) pair in
// ascending recorded_at order. A limit greater than zero restricts the result
// to the most recent `limit` entries. An unknown (target, mode) pair yields
// an empty history.
func (s *Store) ReportHistory(ctx context.Context, target string, mode benchreport.Mode, limit int) ([]HistoryEntry, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}

	rows, err := s.pgConn.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, recorded_at, git_sha, report FROM (
				SELECT r.id, r.recorded_at, r.git_sha, p.report
				FROM %[1]s.runs r
				JOIN %[1]s.reports p ON p.run_id = r.id
				WHERE p.target=$1 AND p.mode=$2
				ORDER BY r.recorded_at DESC
				LIMIT $3
			) h ORDER BY recorded_at ASC`,
			pq.QuoteIdentifier(s.schema)), target, string(mode), lim)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		var rawReport []byte

		if err := rows.Scan(&entry.RunID, &entry.RecordedAt, &entry.GitSHA, &rawReport); err != nil {
			return nil, fmt.Errorf("row scan: %w", err)
		}

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
