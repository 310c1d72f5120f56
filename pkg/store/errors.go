// SPDX-License-Identifier: Apache-2.0

package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNoBaseline is returned when no baseline has been set for a
	// (target, mode) pair.
	ErrNoBaseline = errors.New("no baseline set")

	// ErrNoRuns is returned when the store contains no recorded runs.
	ErrNoRuns = errors.New("no runs recorded")

	ErrStoreSchemaNewer = errors.New("reqbench binary version is older than store schema version")
)

type RunNotFoundError struct {
	ID uuid.UUID
}

func (e RunNotFoundError) Error() string {
	return fmt.Sprintf("run %q not found", e.ID)
}

type RunAlreadyExistsError struct {
	ID uuid.UUID
}

func (e RunAlreadyExistsError) Error() string {
	return fmt.Sprintf("run %q has already been recorded", e.ID)
}

type ReportNotRecordedError struct {
	RunID  uuid.UUID
	Target string
	Mode   string
}

func (e ReportNotRecordedError) Error() string {
	return fmt.Sprintf("run %q has no report for target %q in mode %q", e.RunID, e.Target, e.Mode)
}
