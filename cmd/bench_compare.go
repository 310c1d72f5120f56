// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/gabrielfu/reqbench/pkg/benchreport"
)

func benchCompareCmd() *cobra.Command {
	var useJSON bool

	benchCompareCmd := &cobra.Command{
		Use:       "compare <baseline runfile> <candidate runfile>",
		Short:     "Compare two run files report by report",
		Example:   "bench compare baseline.yaml candidate.yaml",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"baseline runfile", "candidate runfile"},
		RunE: func(cmd *cobra.Command, args []string) error {
			baseline, err := readRun(args[0])
			if err != nil {
				return err
			}
			candidate, err := readRun(args[1])
			if err != nil {
				return err
			}

			deltas, unmatched := benchreport.CompareRuns(baseline, candidate)

			if useJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Deltas    []*benchreport.Delta  `json:"deltas"`
					Unmatched []*benchreport.Report `json:"unmatched,omitempty"`
				}{Deltas: deltas, Unmatched: unmatched})
			}

			data := pterm.TableData{{"TARGET", "MODE", "MEAN", "P50", "P99", "MAX", "THROUGHPUT", "SUCCESS"}}
			for _, d := range deltas {
				data = append(data, []string{
					d.Target,
					string(d.Mode),
					formatDelta(d.MeanLatency),
					formatDelta(d.P50Latency),
					formatDelta(d.P99Latency),
					formatDelta(d.MaxLatency),
					formatDelta(d.Throughput),
					formatDelta(d.Success),
				})
			}

			if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
				return err
			}

			for _, report := range unmatched {
				fmt.Printf("no baseline report for %s (%s)\n", report.Target, report.Mode)
			}
			return nil
		},
	}

	benchCompareCmd.Flags().BoolVarP(&useJSON, "json", "j", false, "output deltas as JSON")

	return benchCompareCmd
}

func formatDelta(d benchreport.MetricDelta) string {
	if d.Baseline == 0 {
		return fmt.Sprintf("%.2f", d.Candidate)
	}
	return fmt.Sprintf("%+.1f%%", d.Relative*100)
}
