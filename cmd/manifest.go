// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

func manifestCmd() *cobra.Command {
	manifestCmd := &cobra.Command{
		Use:   "manifest",
		Short: "Work with dependency manifest files",
		Args:  cobra.NoArgs,
	}

	manifestCmd.AddCommand(manifestCheckCmd())
	manifestCmd.AddCommand(manifestLintCmd())
	manifestCmd.AddCommand(manifestDiffCmd())
	manifestCmd.AddCommand(manifestConvertCmd())

	return manifestCmd
}
