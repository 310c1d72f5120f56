// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/gabrielfu/reqbench/pkg/manifest"
)

func manifestLintCmd() *cobra.Command {
	var requirePinned bool

	manifestLintCmd := &cobra.Command{
		Use:       "lint <file>",
		Short:     "Report style and safety problems in a manifest file",
		Example:   "manifest lint requirements.txt --require-pinned",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"file"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fileName := args[0]

			m, err := manifest.ReadManifestFile(os.DirFS(filepath.Dir(fileName)), filepath.Base(fileName))
			if err != nil {
				return err
			}

			var opts []manifest.LintOption
			if requirePinned {
				opts = append(opts, manifest.WithRequirePinned())
			}

			problems := manifest.Lint(m, opts...)
			if len(problems) == 0 {
				fmt.Printf("%s is clean\n", fileName)
				return nil
			}

			data := pterm.TableData{{"LINE", "SEVERITY", "MESSAGE"}}
			failed := false
			for _, p := range problems {
				data = append(data, []string{strconv.Itoa(p.Line), p.Severity.String(), p.Message})
				if p.Severity == manifest.SeverityError {
					failed = true
				}
			}

			if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
				return err
			}

			if failed {
				return fmt.Errorf("%s has lint errors", fileName)
			}
			return nil
		},
	}

	manifestLintCmd.Flags().BoolVar(&requirePinned, "require-pinned", false, "require every requirement to be pinned to an exact version")

	return manifestLintCmd
}
