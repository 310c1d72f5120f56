// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gabrielfu/reqbench/pkg/manifest"
)

func manifestConvertCmd() *cobra.Command {
	var useJSON bool
	var resolve bool

	manifestConvertCmd := &cobra.Command{
		Use:       "convert <file>",
		Short:     "Export a manifest file as structured YAML or JSON",
		Example:   "manifest convert requirements.txt --json",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"file"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fileName := args[0]

			m, err := readManifest(fileName)
			if err != nil {
				return err
			}

			exporter := manifest.NewExporter(os.Stdout, manifest.NewExportFormat(useJSON))

			if resolve {
				reqs, err := m.Resolve(os.DirFS(filepath.Dir(fileName)))
				if err != nil {
					return err
				}
				return exporter.ExportRequirements(reqs)
			}

			return exporter.Export(m)
		},
	}

	manifestConvertCmd.Flags().BoolVarP(&useJSON, "json", "j", false, "output in JSON format instead of YAML")
	manifestConvertCmd.Flags().BoolVarP(&resolve, "resolve", "r", false, "flatten -r includes into a single requirement list")

	return manifestConvertCmd
}
