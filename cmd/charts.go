// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gabrielfu/reqbench/internal/charts"
	"github.com/gabrielfu/reqbench/pkg/benchreport"
)

func chartsCmd() *cobra.Command {
	var inputFile string
	var limit int

	chartsCmd := &cobra.Command{
		Use:       "charts <output.html>",
		Short:     "Build an HTML page of benchmark history charts",
		Example:   "charts history.html --input history.ndjson",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"output file"},
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFile := args[0]

			entries, err := chartEntries(cmd, inputFile, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("no history to chart")
			}

			out, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer out.Close()

			if err := charts.RenderPage(out, entries); err != nil {
				return fmt.Errorf("rendering charts: %w", err)
			}

			fmt.Printf("Charts for %d history entries written to %s\n", len(entries), outputFile)
			return nil
		},
	}

	chartsCmd.Flags().StringVarP(&inputFile, "input", "i", "", "read history from an NDJSON export instead of the store")
	chartsCmd.Flags().IntVar(&limit, "limit", 0, "only chart the most recent N entries per series")

	return chartsCmd
}

// chartEntries loads history entries from an NDJSON export or, by default,
// from every (target, mode) series recorded in the store.
func chartEntries(cmd *cobra.Command, inputFile string, limit int) ([]charts.Entry, error) {
	if inputFile != "" {
		file, err := os.Open(inputFile)
		if err != nil {
			return nil, fmt.Errorf("opening input file: %w", err)
		}
		defer file.Close()

		return charts.ReadNDJSON(file)
	}

	ctx := cmd.Context()

	st, err := NewStoreWithInitCheck(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	summaries, err := st.ListRuns(ctx, 0)
	if err != nil {
		return nil, err
	}

	// Collect the (target, mode) series present in the store
	type series struct {
		target string
		mode   string
	}
	seen := make(map[series]struct{})
	var allSeries []series

	for _, summary := range summaries {
		run, err := st.GetRun(ctx, summary.ID)
		if err != nil {
			return nil, err
		}
		for i := range run.Reports {
			s := series{target: run.Reports[i].Target, mode: string(run.Reports[i].Mode)}
			if _, ok := seen[s]; !ok {
				seen[s] = struct{}{}
				allSeries = append(allSeries, s)
			}
		}
	}

	var entries []charts.Entry
	for _, s := range allSeries {
		history, err := st.ReportHistory(ctx, s.target, benchreport.Mode(s.mode), limit)
		if err != nil {
			return nil, err
		}
		for _, entry := range history {
			entries = append(entries, charts.Entry{
				GitSHA:     entry.GitSHA,
				RecordedAt: entry.RecordedAt,
				Target:     s.target,
				Mode:       benchreport.Mode(s.mode),
				Report:     entry.Report,
			})
		}
	}

	return entries, nil
}
