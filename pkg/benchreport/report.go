// SPDX-License-Identifier: Apache-2.0

// Package benchreport models benchmark result transcripts produced by an
// external HTTP load-generating tool. Reports are measurement snapshots: the
// package parses, validates, renders and compares them but never issues
// requests or recomputes statistics from raw samples.
package benchreport

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Mode is the deployment mode a benchmark ran against.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// ParseMode parses a deployment mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLocal, ModeRemote:
		return Mode(s), nil
	}
	return "", InvalidModeError{Mode: s}
}

// Report is one benchmark record: the statistics the load tool reported for
// a single (target, mode) attack.
type Report struct {
	Target      string            `json:"target"`
	Mode        Mode              `json:"mode"`
	Requests    uint64            `json:"requests"`
	Rate        float64           `json:"rate"`
	Throughput  float64           `json:"throughput"`
	Duration    DurationBreakdown `json:"duration"`
	Latencies   LatencyMetrics    `json:"latencies"`
	BytesIn     ByteMetrics       `json:"bytes_in"`
	BytesOut    ByteMetrics       `json:"bytes_out"`
	Success     float64           `json:"success"`
	StatusCodes map[string]int    `json:"status_codes,omitempty"`
	Errors      []string          `json:"errors,omitempty"`
}

// DurationBreakdown is the duration row of a report. Total is attack plus
// the wait for the last responses; all three are tool-reported.
type DurationBreakdown struct {
	Total  time.Duration `json:"total"`
	Attack time.Duration `json:"attack"`
	Wait   time.Duration `json:"wait"`
}

// LatencyMetrics holds the latency distribution of completed requests.
type LatencyMetrics struct {
	Min  time.Duration `json:"min"`
	Mean time.Duration `json:"mean"`
	P50  time.Duration `json:"p50"`
	P90  time.Duration `json:"p90"`
	P95  time.Duration `json:"p95"`
	P99  time.Duration `json:"p99"`
	Max  time.Duration `json:"max"`
}

// ByteMetrics is a bytes-in or bytes-out row.
type ByteMetrics struct {
	Total uint64  `json:"total"`
	Mean  float64 `json:"mean"`
}

// SuccessfulRequests returns the number of requests that succeeded,
// derived from the success ratio.
func (r *Report) SuccessfulRequests() uint64 {
	return uint64(math.Round(r.Success * float64(r.Requests)))
}

// ErrorRate returns the fraction of requests that failed.
func (r *Report) ErrorRate() float64 {
	return 1 - r.Success
}

// Validate checks the internal consistency of a report. All violations are
// collected and returned joined together.
func (r *Report) Validate() error {
	var errs error

	if r.Target == "" {
		errs = errors.Join(errs, ValidationError{Field: "target", Reason: "must not be empty"})
	}

	if _, err := ParseMode(string(r.Mode)); err != nil {
		errs = errors.Join(errs, ValidationError{Field: "mode", Reason: err.Error()})
	}

	if r.Success < 0 || r.Success > 1 {
		errs = errors.Join(errs, ValidationError{
			Field:  "success",
			Reason: fmt.Sprintf("ratio %v is outside [0, 1]", r.Success),
		})
	}

	if err := r.validateStatusCodes(); err != nil {
		errs = errors.Join(errs, err)
	}

	if err := r.validateLatencies(); err != nil {
		errs = errors.Join(errs, err)
	}

	return errs
}

func (r *Report) validateStatusCodes() error {
	if len(r.StatusCodes) == 0 || r.Requests == 0 {
		return nil
	}

	var sum uint64
	for _, count := range r.StatusCodes {
		sum += uint64(count)
	}
	if sum != r.Requests {
		return ValidationError{
			Field:  "status_codes",
			Reason: fmt.Sprintf("counts sum to %d, expected %d requests", sum, r.Requests),
		}
	}
	return nil
}

// validateLatencies checks that the reported percentiles are non-decreasing.
// The mean is not part of the chain: it can sit anywhere. Zero values are
// treated as absent so that older transcripts without a min column validate.
func (r *Report) validateLatencies() error {
	chain := []struct {
		name  string
		value time.Duration
	}{
		{"min", r.Latencies.Min},
		{"p50", r.Latencies.P50},
		{"p90", r.Latencies.P90},
		{"p95", r.Latencies.P95},
		{"p99", r.Latencies.P99},
		{"max", r.Latencies.Max},
	}

	previous := time.Duration(0)
	previousName := ""
	for _, link := range chain {
		if link.value == 0 {
			continue
		}
		if link.value < previous {
			return ValidationError{
				Field:  "latencies",
				Reason: fmt.Sprintf("%s (%s) is smaller than %s (%s)", link.name, link.value, previousName, previous),
			}
		}
		previous = link.value
		previousName = link.name
	}

	return nil
}
