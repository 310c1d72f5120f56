// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gabrielfu/reqbench/pkg/manifest"
)

func manifestDiffCmd() *cobra.Command {
	var useJSON bool

	manifestDiffCmd := &cobra.Command{
		Use:       "diff <old file> <new file>",
		Short:     "Show requirement changes between two manifest files",
		Example:   "manifest diff requirements.txt requirements.new.txt",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"old file", "new file"},
		RunE: func(cmd *cobra.Command, args []string) error {
			oldM, err := readManifest(args[0])
			if err != nil {
				return err
			}
			newM, err := readManifest(args[1])
			if err != nil {
				return err
			}

			changes := manifest.Diff(oldM, newM)

			if useJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(changes)
			}

			if changes.IsEmpty() {
				fmt.Println("no changes")
				return nil
			}

			for _, req := range changes.Added {
				fmt.Printf("+ %s\n", req)
			}
			for _, req := range changes.Removed {
				fmt.Printf("- %s\n", req)
			}
			for _, change := range changes.Changed {
				fmt.Printf("~ %s -> %s\n", change.Old, change.New)
			}
			return nil
		},
	}

	manifestDiffCmd.Flags().BoolVarP(&useJSON, "json", "j", false, "output changes as JSON")

	return manifestDiffCmd
}

func readManifest(fileName string) (*manifest.Manifest, error) {
	return manifest.ReadManifestFile(os.DirFS(filepath.Dir(fileName)), filepath.Base(fileName))
}
