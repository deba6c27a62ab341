package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kilianp07/elevsim/app"
	"github.com/kilianp07/elevsim/config"
	"github.com/kilianp07/elevsim/infra/logger"
)

var (
	cfgPath  string
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "elevsim",
	Short: "Multi-elevator dispatch simulation service",
	Long: `elevsim runs the elevator simulation behind an HTTP API, optionally
bridged to MQTT and exporting Prometheus or InfluxDB metrics.
Subcommands run it in virtual time, publish calls and check dispatch scenarios.`,
	PersistentPreRunE: loadEnv,
	RunE:              serve,
	SilenceUsage:      true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	pf.StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before the configuration")
	pf.StringVar(&logLevel, "log-level", "", "override logging.level")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadEnv loads the dotenv file when present. Variables already set win.
func loadEnv(_ *cobra.Command, _ []string) error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// loadConfig reads the configuration and applies command line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
		if err := cfg.Logging.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func serve(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("shutdown: %v", err)
		}
	}()
	return svc.Run(ctx)
}
