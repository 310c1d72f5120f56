// SPDX-License-Identifier: Apache-2.0

package store

import (
	"github.com/google/uuid"
	"github.com/pterm/pterm"

	"github.com/gabrielfu/reqbench/pkg/benchreport"
)

// Logger is responsible for logging store operations.
type Logger interface {
	LogRunRecorded(run *benchreport.Run)
	LogRunDeleted(id uuid.UUID)
	LogBaselineSet(target, mode string, runID uuid.UUID)

	Info(msg string, args ...any)
}

type storeLogger struct {
	logger pterm.Logger
}

type noopLogger struct{}

func NewLogger() Logger {
	return &storeLogger{logger: pterm.DefaultLogger}
}

func NewNoopLogger() Logger {
	return &noopLogger{}
}

func (l *storeLogger) LogRunRecorded(run *benchreport.Run) {
	l.logger.Info("recorded run", l.logger.Args([]any{
		"id", run.ID.String(),
		"git_sha", run.GitSHA,
		"report_count", len(run.Reports),
	}))
}

func (l *storeLogger) LogRunDeleted(id uuid.UUID) {
	l.logger.Info("deleted run", l.logger.Args("id", id.String()))
}

func (l *storeLogger) LogBaselineSet(target, mode string, runID uuid.UUID) {
	l.logger.Info("set baseline", l.logger.Args([]any{
		"target", target,
		"mode", mode,
		"run_id", runID.String(),
	}))
}

func (l *storeLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, l.logger.Args(args))
}

func (l *noopLogger) LogRunRecorded(run *benchreport.Run)                 {}
func (l *noopLogger) LogRunDeleted(id uuid.UUID)                          {}
func (l *noopLogger) LogBaselineSet(target, mode string, runID uuid.UUID) {}
func (l *noopLogger) Info(msg string, args ...any)                        {}
