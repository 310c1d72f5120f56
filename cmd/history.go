// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/gabrielfu/reqbench/internal/charts"
	"github.com/gabrielfu/reqbench/pkg/benchreport"
)

func historyCmd() *cobra.Command {
	var limit int
	var ndjson bool

	historyCmd := &cobra.Command{
		Use:       "history <target> <mode>",
		Short:     "Show the recorded report history of a target",
		Example:   "history checkout local --limit 20",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"target", "mode"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			target := args[0]

			mode, err := benchreport.ParseMode(args[1])
			if err != nil {
				return err
			}

			st, err := NewStoreWithInitCheck(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			entries, err := st.ReportHistory(ctx, target, mode, limit)
			if err != nil {
				return err
			}

			if ndjson {
				enc := json.NewEncoder(os.Stdout)
				for _, entry := range entries {
					err := enc.Encode(charts.Entry{
						GitSHA:     entry.GitSHA,
						RecordedAt: entry.RecordedAt,
						Target:     target,
						Mode:       mode,
						Report:     entry.Report,
					})
					if err != nil {
						return err
					}
				}
				return nil
			}

			data := pterm.TableData{{"RECORDED AT", "GIT SHA", "RUN", "THROUGHPUT", "MEAN", "P99", "SUCCESS"}}
			for _, entry := range entries {
				data = append(data, []string{
					entry.RecordedAt.Format("2006-01-02 15:04:05"),
					shortSHA(entry.GitSHA),
					entry.RunID.String(),
					pterm.Sprintf("%.2f", entry.Report.Throughput),
					entry.Report.Latencies.Mean.String(),
					entry.Report.Latencies.P99.String(),
					pterm.Sprintf("%.2f%%", entry.Report.Success*100),
				})
			}

			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}

	historyCmd.Flags().IntVar(&limit, "limit", 0, "only show the most recent N entries")
	historyCmd.Flags().BoolVar(&ndjson, "ndjson", false, "output newline-delimited JSON suitable for 'charts --input'")

	return historyCmd
}

func shortSHA(sha string) string {
	if len(sha) < 7 {
		return sha
	}
	return sha[:7]
}
