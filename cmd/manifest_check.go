// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gabrielfu/reqbench/pkg/manifest"
)

func manifestCheckCmd() *cobra.Command {
	manifestCheckCmd := &cobra.Command{
		Use:       "check <file>",
		Short:     "Check that a manifest file parses cleanly",
		Example:   "manifest check requirements.txt",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"file"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fileName := args[0]

			file, err := os.Open(fileName)
			if err != nil {
				return fmt.Errorf("opening manifest file: %w", err)
			}
			defer file.Close()

			if err := manifest.Check(file); err != nil {
				return err
			}

			fmt.Printf("%s is valid\n", fileName)
			return nil
		},
	}

	return manifestCheckCmd
}
