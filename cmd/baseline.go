// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/gabrielfu/reqbench/pkg/benchreport"
	"github.com/gabrielfu/reqbench/pkg/store"
)

func baselineCmd() *cobra.Command {
	baselineCmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage the baselines used by the regression gate",
		Args:  cobra.NoArgs,
	}

	baselineCmd.AddCommand(baselineSetCmd())
	baselineCmd.AddCommand(baselineShowCmd())

	return baselineCmd
}

func baselineSetCmd() *cobra.Command {
	baselineSetCmd := &cobra.Command{
		Use:       "set <target> <mode> <run id>",
		Short:     "Mark a recorded report as the baseline for a target",
		Example:   "baseline set checkout local 2b6a6f10-53a8-46b3-9447-fbbb22e312a5",
		Args:      cobra.ExactArgs(3),
		ValidArgs: []string{"target", "mode", "run id"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			target := args[0]

			mode, err := benchreport.ParseMode(args[1])
			if err != nil {
				return err
			}

			runID, err := uuid.Parse(args[2])
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[2], err)
			}

			st, err := NewStoreWithInitCheck(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.SetBaseline(ctx, target, mode, runID); err != nil {
				return err
			}

			fmt.Printf("Baseline for %s (%s) set to run %s\n", target, mode, runID)
			return nil
		},
	}

	return baselineSetCmd
}

func baselineShowCmd() *cobra.Command {
	baselineShowCmd := &cobra.Command{
		Use:       "show [<target> <mode>]",
		Short:     "Show the baselines currently set",
		Example:   "baseline show checkout local",
		Args:      cobra.RangeArgs(0, 2),
		ValidArgs: []string{"target", "mode"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := NewStoreWithInitCheck(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			var entries []store.BaselineEntry
			switch len(args) {
			case 0:
				entries, err = st.Baselines(ctx)
				if err != nil {
					return err
				}
			case 2:
				mode, err := benchreport.ParseMode(args[1])
				if err != nil {
					return err
				}

				entry, err := st.Baseline(ctx, args[0], mode)
				if err != nil {
					return err
				}
				entries = append(entries, *entry)
			default:
				return fmt.Errorf("expected a <target> <mode> pair or no arguments")
			}

			if len(entries) == 0 {
				fmt.Println("no baselines set")
				return nil
			}

			data := pterm.TableData{{"TARGET", "MODE", "RUN", "SET AT", "THROUGHPUT", "MEAN", "P99"}}
			for _, entry := range entries {
				data = append(data, []string{
					entry.Target,
					string(entry.Mode),
					entry.RunID.String(),
					entry.SetAt.Format("2006-01-02 15:04:05"),
					pterm.Sprintf("%.2f", entry.Report.Throughput),
					entry.Report.Latencies.Mean.String(),
					entry.Report.Latencies.P99.String(),
				})
			}

			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}

	return baselineShowCmd
}
