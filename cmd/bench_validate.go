// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/gabrielfu/reqbench/internal/jsonschema"
	"github.com/gabrielfu/reqbench/pkg/benchreport"
)

func benchValidateCmd() *cobra.Command {
	benchValidateCmd := &cobra.Command{
		Use:       "validate <runfile>",
		Short:     "Validate a run file against the schema and semantic rules",
		Example:   "bench validate run.yaml",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"runfile"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fileName := args[0]

			data, err := os.ReadFile(fileName)
			if err != nil {
				return fmt.Errorf("reading run file: %w", err)
			}

			ext := filepath.Ext(fileName)
			jsonData := data
			if ext == ".yaml" || ext == ".yml" {
				jsonData, err = yaml.YAMLToJSON(data)
				if err != nil {
					return fmt.Errorf("converting run file to JSON: %w", err)
				}
			}

			if err := jsonschema.ValidateRun(jsonData); err != nil {
				return fmt.Errorf("run file does not match the schema: %w", err)
			}

			run, err := benchreport.DecodeRun(data, ext)
			if err != nil {
				return err
			}

			if err := run.Validate(); err != nil {
				return err
			}

			fmt.Printf("%s is valid\n", fileName)
			return nil
		},
	}

	return benchValidateCmd
}
