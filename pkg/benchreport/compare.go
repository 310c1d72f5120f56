// SPDX-License-Identifier: Apache-2.0

package benchreport

import "time"

// MetricDelta is the change of one metric between a baseline and a
// candidate report. Relative is the change as a fraction of the baseline,
// zero when the baseline value is zero.
type MetricDelta struct {
	Baseline  float64 `json:"baseline"`
	Candidate float64 `json:"candidate"`
	Delta     float64 `json:"delta"`
	Relative  float64 `json:"relative"`
}

// Delta is a metric-by-metric comparison of two reports for the same
// target and mode. Latency values are in milliseconds.
type Delta struct {
	Target      string      `json:"target"`
	Mode        Mode        `json:"mode"`
	MeanLatency MetricDelta `json:"mean_latency"`
	P50Latency  MetricDelta `json:"p50_latency"`
	P99Latency  MetricDelta `json:"p99_latency"`
	MaxLatency  MetricDelta `json:"max_latency"`
	Throughput  MetricDelta `json:"throughput"`
	Success     MetricDelta `json:"success"`
}

// Compare computes the change from a baseline report to a candidate report.
func Compare(baseline, candidate *Report) *Delta {
	return &Delta{
		Target:      candidate.Target,
		Mode:        candidate.Mode,
		MeanLatency: metricDelta(latencyMs(baseline.Latencies.Mean), latencyMs(candidate.Latencies.Mean)),
		P50Latency:  metricDelta(latencyMs(baseline.Latencies.P50), latencyMs(candidate.Latencies.P50)),
		P99Latency:  metricDelta(latencyMs(baseline.Latencies.P99), latencyMs(candidate.Latencies.P99)),
		MaxLatency:  metricDelta(latencyMs(baseline.Latencies.Max), latencyMs(candidate.Latencies.Max)),
		Throughput:  metricDelta(baseline.Throughput, candidate.Throughput),
		Success:     metricDelta(baseline.Success, candidate.Success),
	}
}

// CompareRuns pairs the reports of two runs by (target, mode) and compares
// each pair. Candidate reports without a baseline counterpart are returned
// separately.
func CompareRuns(baseline, candidate *Run) (deltas []*Delta, unmatched []*Report) {
	type key struct {
		target string
		mode   Mode
	}

	baselines := make(map[key]*Report)
	for i := range baseline.Reports {
		r := &baseline.Reports[i]
		baselines[key{r.Target, r.Mode}] = r
	}

	for i := range candidate.Reports {
		r := &candidate.Reports[i]
		b, ok := baselines[key{r.Target, r.Mode}]
		if !ok {
			unmatched = append(unmatched, r)
			continue
		}
		deltas = append(deltas, Compare(b, r))
	}

	return deltas, unmatched
}

func metricDelta(baseline, candidate float64) MetricDelta {
	d := MetricDelta{
		Baseline:  baseline,
		Candidate: candidate,
		Delta:     candidate - baseline,
	}
	if baseline != 0 {
		d.Relative = d.Delta / baseline
	}
	return d
}

func latencyMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
