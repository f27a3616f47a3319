package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaYani55/aitinkerer-demo-101225/internal/ai"
	"github.com/JaYani55/aitinkerer-demo-101225/internal/batch"
	"github.com/JaYani55/aitinkerer-demo-101225/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse jobs interactively (TUI)",
	Long:  "Opens the job list TUI: filter by metadata status, inspect descriptions, and generate or clear metadata per job.",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The TUI owns the terminal; any log output before the alt-screen starts
	// corrupts the display, so the extractor gets a discard logger.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var extractor batch.Extractor
	if cfg.Provider.APIKey == "" {
		// Browsing without a key is fine; generation will report the
		// missing credential when triggered.
		extractor = ai.NewNopExtractor()
	} else {
		extractor, _, err = buildExtractor(cfg, "", silentLogger)
		if err != nil {
			logger.Error("failed to set up extractor", "error", err)
			os.Exit(1)
		}
	}

	store, ds, err := openDataset(cfg, silentLogger)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}

	return tui.Run(ds, store, extractor)
}
