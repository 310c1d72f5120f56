// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

type InvalidThresholdError struct {
	Field  string
	Reason string
}

func (e InvalidThresholdError) Error() string {
	return fmt.Sprintf("invalid threshold %q: %s", e.Field, e.Reason)
}

// ReadThresholdsFile reads gate thresholds from a YAML or JSON config file.
func ReadThresholdsFile(fsys fs.FS, name string) (Thresholds, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Thresholds{}, fmt.Errorf("reading gate config %q: %w", name, err)
	}

	var t Thresholds
	if err := yaml.UnmarshalStrict(data, &t); err != nil {
		return Thresholds{}, fmt.Errorf("reading gate config %q: %w", filepath.Base(name), err)
	}

	if err := t.Validate(); err != nil {
		return Thresholds{}, err
	}

	return t, nil
}

// Validate checks that all thresholds are fractions in a sensible range.
func (t Thresholds) Validate() error {
	if t.MaxLatencyIncrease < 0 {
		return InvalidThresholdError{Field: "max_latency_increase", Reason: "must not be negative"}
	}
	if t.MaxP99LatencyIncrease < 0 {
		return InvalidThresholdError{Field: "max_p99_latency_increase", Reason: "must not be negative"}
	}
	if t.MaxThroughputDrop < 0 || t.MaxThroughputDrop > 1 {
		return InvalidThresholdError{Field: "max_throughput_drop", Reason: "must be a fraction between 0 and 1"}
	}
	if t.MinSuccess < 0 || t.MinSuccess > 1 {
		return InvalidThresholdError{Field: "min_success", Reason: "must be a fraction between 0 and 1"}
	}
	return nil
}
