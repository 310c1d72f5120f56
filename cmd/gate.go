// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/gabrielfu/reqbench/pkg/benchreport"
	"github.com/gabrielfu/reqbench/pkg/gate"
)

func gateCmd() *cobra.Command {
	var configFile string
	var againstFile string

	gateCmd := &cobra.Command{
		Use:       "gate <runfile>",
		Short:     "Check a candidate run for regressions against its baselines",
		Example:   "gate candidate.yaml --config gate.yaml",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"runfile"},
		RunE: func(cmd *cobra.Command, args []string) error {
			candidate, err := readRun(args[0])
			if err != nil {
				return err
			}

			var thresholds gate.Thresholds
			if configFile != "" {
				thresholds, err = gate.ReadThresholdsFile(os.DirFS(filepath.Dir(configFile)), filepath.Base(configFile))
				if err != nil {
					return err
				}
			}

			baseline, err := gateBaseline(cmd, againstFile)
			if err != nil {
				return err
			}

			violations := gate.EvaluateRuns(baseline, candidate, thresholds)
			if len(violations) == 0 {
				pterm.Success.Println("gate passed")
				return nil
			}

			for _, v := range violations {
				pterm.Error.Println(v.Error())
			}
			return fmt.Errorf("gate failed with %d violation(s)", len(violations))
		},
	}

	gateCmd.Flags().StringVarP(&configFile, "config", "c", "", "gate config file with regression thresholds")
	gateCmd.Flags().StringVar(&againstFile, "against", "", "compare against a run file instead of the stored baselines")

	return gateCmd
}

// gateBaseline assembles the baseline run to gate against, either from a run
// file or from the baselines recorded in the store.
func gateBaseline(cmd *cobra.Command, againstFile string) (*benchreport.Run, error) {
	if againstFile != "" {
		return readRun(againstFile)
	}

	ctx := cmd.Context()

	st, err := NewStoreWithInitCheck(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	entries, err := st.Baselines(ctx)
	if err != nil {
		return nil, err
	}

	baseline := &benchreport.Run{}
	for _, entry := range entries {
		baseline.Reports = append(baseline.Reports, entry.Report)
	}
	return baseline, nil
}
