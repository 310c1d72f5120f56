// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of the run store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			st, err := NewStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			status, err := st.Status(ctx)
			if err != nil {
				return err
			}

			statusJSON, err := json.MarshalIndent(status, "", "  ")
			if err != nil {
				return err
			}

			fmt.Println(string(statusJSON))
			return nil
		},
	}

	return statusCmd
}
