// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gabrielfu/reqbench/pkg/benchreport"
)

func benchIngestCmd() *cobra.Command {
	var outputFile string
	var gitSHA string
	var source string
	var useJSON bool

	benchIngestCmd := &cobra.Command{
		Use:       "ingest <transcript>",
		Short:     "Convert a benchmark transcript into a run file",
		Example:   "bench ingest bench.txt --git-sha $(git rev-parse HEAD) -o run.yaml",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"transcript"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fileName := args[0]

			file, err := os.Open(fileName)
			if err != nil {
				return fmt.Errorf("opening transcript: %w", err)
			}
			defer file.Close()

			reports, err := benchreport.ParseTranscript(file)
			if err != nil {
				return fmt.Errorf("parsing transcript: %w", err)
			}

			run := benchreport.NewRun(reports)
			run.GitSHA = gitSHA
			run.Source = source

			if err := run.Validate(); err != nil {
				return err
			}

			format := benchreport.NewRunFormat(useJSON)
			if outputFile == "" {
				base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
				outputFile = base + "." + format.Extension()
			}

			out, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("creating run file: %w", err)
			}
			defer out.Close()

			if err := run.Encode(out, format); err != nil {
				return fmt.Errorf("encoding run: %w", err)
			}

			fmt.Printf("Run %s with %d report(s) written to %s\n", run.ID, len(run.Reports), outputFile)
			return nil
		},
	}

	benchIngestCmd.Flags().StringVarP(&outputFile, "output", "o", "", "path of the run file to write")
	benchIngestCmd.Flags().StringVar(&gitSHA, "git-sha", "", "git commit the benchmark was taken at")
	benchIngestCmd.Flags().StringVar(&source, "source", "", "origin of the run (eg. ci, local)")
	benchIngestCmd.Flags().BoolVarP(&useJSON, "json", "j", false, "write the run file as JSON instead of YAML")

	return benchIngestCmd
}
