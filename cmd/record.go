// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func recordCmd() *cobra.Command {
	recordCmd := &cobra.Command{
		Use:       "record <runfile>",
		Short:     "Record a run file in the run store",
		Example:   "record run.yaml",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"runfile"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			run, err := readRun(args[0])
			if err != nil {
				return err
			}

			st, err := NewStoreWithInitCheck(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			sp, _ := pterm.DefaultSpinner.WithText("Recording run...").Start()

			if err := st.RecordRun(ctx, run); err != nil {
				sp.Fail(pterm.Sprintf("Failed to record run: %s", err))
				return err
			}

			sp.Success(pterm.Sprintf("Recorded run %s with %d report(s)", run.ID, len(run.Reports)))
			return nil
		},
	}

	return recordCmd
}
