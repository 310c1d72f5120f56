// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the run store, creating the required schema and tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := NewStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			sp, _ := pterm.DefaultSpinner.WithText("Initializing reqbench...").Start()

			if err := st.Init(ctx); err != nil {
				sp.Fail(pterm.Sprintf("Failed to initialize reqbench: %s", err))
				return err
			}

			sp.Success("Initialization complete! reqbench is ready to be used")
			return nil
		},
	}

	return initCmd
}
