// SPDX-License-Identifier: Apache-2.0

package benchreport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/nullable"
	"sigs.k8s.io/yaml"
)

// Run is a recorded benchmark session: one or more reports captured from a
// single transcript, plus provenance.
type Run struct {
	ID         uuid.UUID   `json:"id"`
	RecordedAt time.Time   `json:"recorded_at"`
	GitSHA     string      `json:"git_sha,omitempty"`
	Source     string      `json:"source,omitempty"`
	Attack     *AttackSpec `json:"attack,omitempty"`
	Reports    []Report    `json:"reports"`
}

// AttackSpec holds the attack parameters echoed by the load tool. MaxWorkers
// distinguishes an explicit null (unlimited workers) from an absent value
// (tool default).
type AttackSpec struct {
	Rate        float64                   `json:"rate,omitempty"`
	Duration    time.Duration             `json:"duration,omitempty"`
	Connections int                       `json:"connections,omitempty"`
	MaxWorkers  nullable.Nullable[uint64] `json:"max_workers,omitempty"`
	Targets     []string                  `json:"targets,omitempty"`
}

// NewRun wraps freshly parsed reports into a run with a new identity.
func NewRun(reports []Report) *Run {
	return &Run{
		ID:         uuid.New(),
		RecordedAt: time.Now().UTC(),
		Reports:    reports,
	}
}

// Report returns the run's report for the given target and mode, or nil.
func (r *Run) Report(target string, mode Mode) *Report {
	for i := range r.Reports {
		if r.Reports[i].Target == target && r.Reports[i].Mode == mode {
			return &r.Reports[i]
		}
	}
	return nil
}

// Validate validates every report in the run and checks that no two reports
// share a (target, mode) pair.
func (r *Run) Validate() error {
	var errs error

	if r.ID == uuid.Nil {
		errs = errors.Join(errs, ValidationError{Field: "id", Reason: "must not be empty"})
	}
	if len(r.Reports) == 0 {
		errs = errors.Join(errs, ValidationError{Field: "reports", Reason: "run holds no reports"})
	}

	type key struct {
		target string
		mode   Mode
	}
	seen := make(map[key]bool)
	for i := range r.Reports {
		report := &r.Reports[i]
		if err := report.Validate(); err != nil {
			errs = errors.Join(errs, err)
		}

		k := key{report.Target, report.Mode}
		if seen[k] {
			errs = errors.Join(errs, ValidationError{
				Field:  "reports",
				Reason: fmt.Sprintf("duplicate report for target %q in %s mode", report.Target, report.Mode),
			})
		}
		seen[k] = true
	}

	return errs
}

// RunFormat is the on-disk encoding of a run file.
type RunFormat int

const (
	InvalidRunFormat RunFormat = iota
	YAMLRunFormat
	JSONRunFormat
)

var ErrInvalidRunFormat = errors.New("invalid run file format")

// NewRunFormat returns YAML or JSON format
func NewRunFormat(useJSON bool) RunFormat {
	if useJSON {
		return JSONRunFormat
	}
	return YAMLRunFormat
}

// Extension returns the extension name for the run file
func (f RunFormat) Extension() string {
	switch f {
	case YAMLRunFormat:
		return "yaml"
	case JSONRunFormat:
		return "json"
	}
	return ""
}

// Encode writes the run in the given format. Durations are encoded as
// nanosecond integers in both formats.
func (r *Run) Encode(w io.Writer, format RunFormat) error {
	switch format {
	case YAMLRunFormat:
		out, err := yaml.Marshal(r)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case JSONRunFormat:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	default:
		return ErrInvalidRunFormat
	}
}

// ReadRunFile reads a run file in JSON or YAML format, chosen by the file
// extension.
func ReadRunFile(fsys fs.FS, name string) (*Run, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}

	return DecodeRun(data, filepath.Ext(name))
}

// DecodeRun decodes run file contents. The extension selects the decoder:
// ".json" is decoded as JSON, ".yaml" and ".yml" as YAML.
func DecodeRun(data []byte, ext string) (*Run, error) {
	var run Run

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &run); err != nil {
			return nil, fmt.Errorf("decoding run file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &run); err != nil {
			return nil, fmt.Errorf("decoding run file: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrInvalidRunFormat, ext)
	}

	return &run, nil
}
