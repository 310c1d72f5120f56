// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/gabrielfu/reqbench/pkg/benchreport"
)

func benchRenderCmd() *cobra.Command {
	var target string
	var mode string
	var asTable bool

	benchRenderCmd := &cobra.Command{
		Use:       "render <runfile>",
		Short:     "Render the reports of a run file as canonical text",
		Example:   "bench render run.yaml --target checkout",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"runfile"},
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := readRun(args[0])
			if err != nil {
				return err
			}

			reports, err := selectReports(run, target, mode)
			if err != nil {
				return err
			}

			if asTable {
				return renderReportTable(reports)
			}

			for i := range reports {
				if i > 0 {
					fmt.Println()
				}
				if err := reports[i].WriteText(os.Stdout); err != nil {
					return err
				}
			}
			return nil
		},
	}

	benchRenderCmd.Flags().StringVar(&target, "target", "", "only render reports for this target")
	benchRenderCmd.Flags().StringVar(&mode, "mode", "", "only render reports for this deployment mode")
	benchRenderCmd.Flags().BoolVar(&asTable, "table", false, "render a summary table instead of canonical text")

	return benchRenderCmd
}

func renderReportTable(reports []*benchreport.Report) error {
	data := pterm.TableData{{"TARGET", "MODE", "REQUESTS", "RATE", "THROUGHPUT", "MEAN", "P99", "SUCCESS"}}
	for _, r := range reports {
		data = append(data, []string{
			r.Target,
			string(r.Mode),
			fmt.Sprintf("%d", r.Requests),
			fmt.Sprintf("%.2f", r.Rate),
			fmt.Sprintf("%.2f", r.Throughput),
			r.Latencies.Mean.String(),
			r.Latencies.P99.String(),
			fmt.Sprintf("%.2f%%", r.Success*100),
		})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// selectReports filters a run's reports by the optional target and mode
// flags.
func selectReports(run *benchreport.Run, target, mode string) ([]*benchreport.Report, error) {
	var parsedMode benchreport.Mode
	if mode != "" {
		var err error
		parsedMode, err = benchreport.ParseMode(mode)
		if err != nil {
			return nil, err
		}
	}

	var reports []*benchreport.Report
	for i := range run.Reports {
		report := &run.Reports[i]
		if target != "" && report.Target != target {
			continue
		}
		if mode != "" && report.Mode != parsedMode {
			continue
		}
		reports = append(reports, report)
	}

	if len(reports) == 0 {
		return nil, fmt.Errorf("run has no matching reports")
	}
	return reports, nil
}

// readRun reads a run file in either YAML or JSON format.
func readRun(fileName string) (*benchreport.Run, error) {
	return benchreport.ReadRunFile(os.DirFS(filepath.Dir(fileName)), filepath.Base(fileName))
}
