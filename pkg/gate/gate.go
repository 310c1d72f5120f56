// SPDX-License-Identifier: Apache-2.0

// Package gate compares candidate benchmark reports against baselines and
// reports regressions that exceed configured thresholds. It only evaluates
// existing measurements; it never issues requests itself.
package gate

import (
	"time"

	"github.com/gabrielfu/reqbench/pkg/benchreport"
)

// Thresholds configures the regression gate. All values are fractions: a
// MaxLatencyIncrease of 0.1 allows mean latency to grow by up to 10% over
// the baseline. A zero value disables the corresponding check.
type Thresholds struct {
	// Maximum allowed relative increase in mean latency.
	MaxLatencyIncrease float64 `json:"max_latency_increase,omitempty"`

	// Maximum allowed relative increase in p99 latency.
	MaxP99LatencyIncrease float64 `json:"max_p99_latency_increase,omitempty"`

	// Maximum allowed relative drop in throughput.
	MaxThroughputDrop float64 `json:"max_throughput_drop,omitempty"`

	// Minimum success ratio required of the candidate.
	MinSuccess float64 `json:"min_success,omitempty"`
}

// Violation is a single failed gate check.
type Violation interface {
	error

	// Series returns the (target, mode) pair the violation was found in.
	Series() (target string, mode benchreport.Mode)
}

// Evaluate checks a candidate report against its baseline. A nil baseline
// yields a MissingBaseline violation; checks that do not need a baseline are
// still applied.
func Evaluate(baseline, candidate *benchreport.Report, t Thresholds) []Violation {
	var violations []Violation

	if baseline == nil {
		violations = append(violations, MissingBaseline{
			Target: candidate.Target,
			Mode:   candidate.Mode,
		})
	} else {
		violations = append(violations, evaluateAgainstBaseline(baseline, candidate, t)...)
	}

	if t.MinSuccess > 0 && candidate.Success < t.MinSuccess {
		violations = append(violations, SuccessBelowMinimum{
			Target:  candidate.Target,
			Mode:    candidate.Mode,
			Success: candidate.Success,
			Minimum: t.MinSuccess,
		})
	}

	return violations
}

func evaluateAgainstBaseline(baseline, candidate *benchreport.Report, t Thresholds) []Violation {
	var violations []Violation

	if v := latencyCheck("mean", baseline.Latencies.Mean, candidate.Latencies.Mean, t.MaxLatencyIncrease, candidate); v != nil {
		violations = append(violations, v)
	}
	if v := latencyCheck("p99", baseline.Latencies.P99, candidate.Latencies.P99, t.MaxP99LatencyIncrease, candidate); v != nil {
		violations = append(violations, v)
	}

	if t.MaxThroughputDrop > 0 && baseline.Throughput > 0 {
		drop := (baseline.Throughput - candidate.Throughput) / baseline.Throughput
		if drop > t.MaxThroughputDrop {
			violations = append(violations, ThroughputRegression{
				Target:    candidate.Target,
				Mode:      candidate.Mode,
				Baseline:  baseline.Throughput,
				Candidate: candidate.Throughput,
				Drop:      drop,
				Limit:     t.MaxThroughputDrop,
			})
		}
	}

	return violations
}

func latencyCheck(metric string, baseline, candidate time.Duration, limit float64, report *benchreport.Report) Violation {
	if limit <= 0 || baseline <= 0 {
		return nil
	}

	increase := float64(candidate-baseline) / float64(baseline)
	if increase <= limit {
		return nil
	}

	return LatencyRegression{
		Target:    report.Target,
		Mode:      report.Mode,
		Metric:    metric,
		Baseline:  baseline,
		Candidate: candidate,
		Increase:  increase,
		Limit:     limit,
	}
}

// EvaluateRuns checks every report of the candidate run against the matching
// (target, mode) report of the baseline run.
func EvaluateRuns(baseline, candidate *benchreport.Run, t Thresholds) []Violation {
	var violations []Violation

	for i := range candidate.Reports {
		report := &candidate.Reports[i]

		var base *benchreport.Report
		if baseline != nil {
			base = baseline.Report(report.Target, report.Mode)
		}

		violations = append(violations, Evaluate(base, report, t)...)
	}

	return violations
}
