// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"fmt"
	"time"

	"github.com/gabrielfu/reqbench/pkg/benchreport"
)

type LatencyRegression struct {
	Target    string
	Mode      benchreport.Mode
	Metric    string
	Baseline  time.Duration
	Candidate time.Duration
	Increase  float64
	Limit     float64
}

func (v LatencyRegression) Error() string {
	return fmt.Sprintf("%s (%s): %s latency increased by %.1f%% (%s -> %s), limit is %.1f%%",
		v.Target, v.Mode, v.Metric, v.Increase*100, v.Baseline, v.Candidate, v.Limit*100)
}

func (v LatencyRegression) Series() (string, benchreport.Mode) {
	return v.Target, v.Mode
}

type ThroughputRegression struct {
	Target    string
	Mode      benchreport.Mode
	Baseline  float64
	Candidate float64
	Drop      float64
	Limit     float64
}

func (v ThroughputRegression) Error() string {
	return fmt.Sprintf("%s (%s): throughput dropped by %.1f%% (%.2f -> %.2f req/s), limit is %.1f%%",
		v.Target, v.Mode, v.Drop*100, v.Baseline, v.Candidate, v.Limit*100)
}

func (v ThroughputRegression) Series() (string, benchreport.Mode) {
	return v.Target, v.Mode
}

type SuccessBelowMinimum struct {
	Target  string
	Mode    benchreport.Mode
	Success float64
	Minimum float64
}

func (v SuccessBelowMinimum) Error() string {
	return fmt.Sprintf("%s (%s): success ratio %.4f is below the required minimum %.4f",
		v.Target, v.Mode, v.Success, v.Minimum)
}

func (v SuccessBelowMinimum) Series() (string, benchreport.Mode) {
	return v.Target, v.Mode
}

type MissingBaseline struct {
	Target string
	Mode   benchreport.Mode
}

func (v MissingBaseline) Error() string {
	return fmt.Sprintf("%s (%s): no baseline to compare against", v.Target, v.Mode)
}

func (v MissingBaseline) Series() (string, benchreport.Mode) {
	return v.Target, v.Mode
}
