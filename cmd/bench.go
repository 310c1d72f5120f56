// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

func benchCmd() *cobra.Command {
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Work with benchmark transcripts and run files",
		Args:  cobra.NoArgs,
	}

	benchCmd.AddCommand(benchIngestCmd())
	benchCmd.AddCommand(benchValidateCmd())
	benchCmd.AddCommand(benchRenderCmd())
	benchCmd.AddCommand(benchCompareCmd())

	return benchCmd
}
