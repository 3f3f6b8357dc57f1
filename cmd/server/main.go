package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agrisentry/config"
	"agrisentry/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "agrisentry",
	Short: "Farm advisory backend with a simulated field sensor network",
	Long: `agrisentry serves the farm dashboard API: live field readings from the
simulation engine, an activity log, the AI advisor, the agronomy knowledge
base and mandi market prices.

Run without arguments to start the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, simulateCmd)
}

// bootstrap loads configuration and builds the logger shared by every command.
func bootstrap() (config.AppConfig, *zap.Logger, error) {
	cfg, dotenv, err := config.Load()
	if err != nil {
		return config.AppConfig{}, nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return config.AppConfig{}, nil, fmt.Errorf("logger: %w", err)
	}
	log.Debug("config loaded", zap.Bool("dotenv", dotenv), zap.Any("config", cfg.Redacted()))
	return cfg, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
