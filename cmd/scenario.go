package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/elevsim/qa/scenarios"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario FILE...",
	Short: "Check dispatch decisions against YAML scenarios",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScenarios,
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}

func runScenarios(cmd *cobra.Command, files []string) error {
	out := cmd.OutOrStdout()
	failed := 0
	for _, f := range files {
		sc, err := scenarios.Load(f)
		if err != nil {
			return err
		}
		res, err := scenarios.Run(sc)
		if err == nil {
			err = scenarios.Verify(sc, res)
		}
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", sc.Name, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s\n", sc.Name)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(files))
	}
	return nil
}
