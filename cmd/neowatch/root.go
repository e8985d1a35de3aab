package main

import (
	"fmt"
	"io"

	"github.com/samvad-hq/neowatch/internal/app"
	"github.com/samvad-hq/neowatch/internal/config"
	"github.com/samvad-hq/neowatch/internal/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "neowatch",
	Short: "near-Earth object close approaches from NASA NeoWs",
	Long: `neowatch fetches the NeoWs close-approach feed for a window of days around
today, keeps the objects passing within a chosen distance, and prints them
ordered by approach time.

Configuration comes from the environment (and configs/.env): NEO_API_KEY,
WINDOW_DAYS, DISPLAY_LOCALE, PREFS_TYPE, PREFS_PATH, PUBLISHERS_FILE, ...`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// openSession loads config, starts logging and builds the pipeline. quiet sends
// logs nowhere unless a log file is configured, for the full-screen UI.
func openSession(cmd *cobra.Command, quiet bool) (*app.Pipeline, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if quiet && cfg.LogFile == "" {
		logger.InitWithWriter(cfg.LogLevel, io.Discard)
	} else if _, err := logger.Init(cfg); err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	log := logger.New(logger.S)

	logger.DebugObj("neowatch starting", "config", cfg.Redacted())

	pipeline, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize pipeline", "error", err.Error())
		_ = logger.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := pipeline.Close(); err != nil {
			logger.ErrorObj("pipeline close failed", "error", err.Error())
		}
		_ = logger.Close()
	}
	return pipeline, cleanup, nil
}
