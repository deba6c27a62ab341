package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/elevsim/core/clock"
	"github.com/kilianp07/elevsim/core/random"
	"github.com/kilianp07/elevsim/core/report"
	"github.com/kilianp07/elevsim/core/scheduler"
	"github.com/kilianp07/elevsim/core/simulation"
	"github.com/kilianp07/elevsim/pkg/export"
)

// virtualEpoch is the start of every virtual run so outputs are reproducible.
var virtualEpoch = time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)

var simulateOpts struct {
	ticks     int
	seed      int64
	csvPath   string
	jsonPath  string
	chartPath string
	scheduler string
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the simulation in virtual time and print the report",
	RunE:  simulate,
}

func init() {
	f := simulateCmd.Flags()
	f.IntVarP(&simulateOpts.ticks, "ticks", "n", 600, "number of motion steps to run")
	f.Int64Var(&simulateOpts.seed, "seed", 0, "random seed (overrides the configuration)")
	f.StringVar(&simulateOpts.csvPath, "csv", "", "write the final per-elevator state as CSV")
	f.StringVar(&simulateOpts.jsonPath, "json", "", "write the final state as JSON")
	f.StringVar(&simulateOpts.chartPath, "chart", "", "write the occupancy chart as HTML")
	f.StringVar(&simulateOpts.scheduler, "scheduler", "", "scheduler tunables file (yaml or json) replacing the configured ones")
	rootCmd.AddCommand(simulateCmd)
}

func simulate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if simulateOpts.ticks <= 0 {
		return fmt.Errorf("ticks must be positive")
	}
	seed := cfg.Seed
	if cmd.Flags().Changed("seed") {
		seed = simulateOpts.seed
	}
	if seed == 0 {
		seed = 1
	}
	schedCfg := cfg.Scheduler
	if p := simulateOpts.scheduler; p != "" {
		if schedCfg, err = scheduler.LoadConfig(p); err != nil {
			return err
		}
	}

	clk := clock.NewManual(virtualEpoch)
	eng, err := simulation.New(cfg.Simulation,
		simulation.WithClock(clk),
		simulation.WithRandom(random.New(seed)),
		simulation.WithSchedulerConfig(schedCfg),
	)
	if err != nil {
		return err
	}
	run := eng.RunVirtual(clk, simulateOpts.ticks)
	st := eng.Snapshot()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Ran %d ticks over %s of virtual time, %d generated calls (seed %d)\n\n",
		run.Ticks, run.Elapsed, run.Calls, seed)
	fmt.Fprint(out, report.Markdown(st, clk.Now()))

	if p := simulateOpts.csvPath; p != "" {
		if err := writeFile(p, func(f *os.File) error { return export.WriteCSV(f, st) }); err != nil {
			return err
		}
	}
	if p := simulateOpts.jsonPath; p != "" {
		if err := writeFile(p, func(f *os.File) error { return export.WriteJSON(f, st) }); err != nil {
			return err
		}
	}
	if p := simulateOpts.chartPath; p != "" {
		html, err := export.OccupancyChartHTML(st)
		if err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
