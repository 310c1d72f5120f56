// SPDX-License-Identifier: Apache-2.0

// Package charts renders benchmark report history as a page of line charts,
// one chart per (target, metric) with a series per deployment mode.
package charts

import (
	"bufio"
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/gabrielfu/reqbench/pkg/benchreport"
)

// Entry is a single report in the history of a (target, mode) series.
type Entry struct {
	GitSHA     string             `json:"git_sha"`
	RecordedAt time.Time          `json:"recorded_at"`
	Target     string             `json:"target"`
	Mode       benchreport.Mode   `json:"mode"`
	Report     benchreport.Report `json:"report"`
}

// The metrics charted for each target, in display order.
var metrics = []struct {
	name  string
	value func(*benchreport.Report) float64
}{
	{"mean latency (ms)", func(r *benchreport.Report) float64 {
		return float64(r.Latencies.Mean) / float64(time.Millisecond)
	}},
	{"p99 latency (ms)", func(r *benchreport.Report) float64 {
		return float64(r.Latencies.P99) / float64(time.Millisecond)
	}},
	{"throughput (req/s)", func(r *benchreport.Report) float64 {
		return r.Throughput
	}},
}

type dataKey struct {
	target string
	metric string
	mode   benchreport.Mode
	sha    string
}

type chartKey struct {
	target string
	metric string
}

// Generate builds line charts grouped by target and metric with a series for
// each deployment mode. The x-axis holds short commit SHAs in recorded_at
// order.
func Generate(entries []Entry) []*charts.Line {
	// Time data for each sha so we can order them later
	timeOrder := make(map[string]int64) // shortSHA -> timestamp

	// metric values grouped by dataKey
	groupedData := make(map[dataKey]float64)

	// set of modes present in the history
	modes := make(map[benchreport.Mode]struct{})

	for _, entry := range entries {
		short := shortSHA(entry.GitSHA)
		timeOrder[short] = entry.RecordedAt.UnixNano()
		modes[entry.Mode] = struct{}{}

		for _, metric := range metrics {
			key := dataKey{
				target: entry.Target,
				metric: metric.name,
				mode:   entry.Mode,
				sha:    short,
			}
			groupedData[key] = metric.value(&entry.Report)
		}
	}

	// Create x-axis for each chart
	xs := make(map[chartKey][]string)
	for d := range groupedData {
		ck := chartKey{target: d.target, metric: d.metric}
		x := xs[ck]
		x = append(x, d.sha)
		xs[ck] = x
	}
	// Sort and deduplicate xs in time order
	for key, x := range xs {
		// Dedupe
		slices.Sort(x)
		x = slices.Compact(x)
		// Sort by time
		slices.SortFunc(x, func(a, b string) int {
			return cmp.Compare(timeOrder[a], timeOrder[b])
		})
		xs[key] = x
	}

	allCharts := make([]*charts.Line, 0, len(xs))

	for ck, xValues := range xs {
		chart := charts.NewLine()
		chart.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{
				Title: fmt.Sprintf("%s (%s)", ck.target, ck.metric),
			}),
			charts.WithAnimation(false))
		chart.SetXAxis(xValues)

		series := make(map[benchreport.Mode][]float64)

		// Add series per mode
		for _, x := range xValues {
			for mode := range modes {
				dk := dataKey{
					target: ck.target,
					metric: ck.metric,
					mode:   mode,
					sha:    x,
				}
				value, ok := groupedData[dk]
				if !ok {
					continue
				}

				series[mode] = append(series[mode], value)
			}
		}

		// Make sure modes are consistently sorted
		sortedModes := slices.Collect(maps.Keys(modes))
		slices.Sort(sortedModes)

		for _, mode := range sortedModes {
			s, ok := series[mode]
			if !ok {
				continue
			}

			data := make([]opts.LineData, len(s))
			for i := range s {
				data[i] = opts.LineData{
					Value: s[i],
				}
			}
			chart.AddSeries(string(mode), data)
		}

		allCharts = append(allCharts, chart)
	}

	sort.Slice(allCharts, func(i, j int) bool {
		return allCharts[i].Title.Title < allCharts[j].Title.Title
	})

	return allCharts
}

// RenderPage renders the charts for the given history entries as a single
// HTML page.
func RenderPage(w io.Writer, entries []Entry) error {
	page := components.NewPage()
	page.SetPageTitle("reqbench benchmark history")
	page.SetLayout("flex")

	for _, c := range Generate(entries) {
		page.AddCharts(c)
	}

	return page.Render(w)
}

// ReadNDJSON reads history entries from newline-delimited JSON, one entry
// per line.
func ReadNDJSON(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)

	var entries []Entry
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("unmarshalling history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning input: %w", err)
	}

	return entries, nil
}

// First 7 characters
func shortSHA(sha string) string {
	if len(sha) < 7 {
		return sha
	}
	return sha[:7]
}
