package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JaYani55/aitinkerer-demo-101225/internal/batch"
	"github.com/JaYani55/aitinkerer-demo-101225/internal/filter"
	"github.com/JaYani55/aitinkerer-demo-101225/internal/history"
)

var (
	batchLimit    int
	batchEmployer string
	batchModel    string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate metadata for the next jobs without it",
	Long:  "Runs the extractor sequentially over filtered jobs that have no metadata yet, then saves the whole dataset once. Failed jobs are skipped and reported.",
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max jobs to process (default: batch.limit from config)")
	batchCmd.Flags().StringVar(&batchEmployer, "employer", "", "only process jobs of employers matching this substring")
	batchCmd.Flags().StringVar(&batchModel, "model", "", "override the configured model for this run")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	extractor, modelID, err := buildExtractor(cfg, batchModel, logger)
	if err != nil {
		logger.Error("failed to set up extractor", "error", err)
		os.Exit(1)
	}

	store, ds, err := openDataset(cfg, logger)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}

	jobFilter := filter.JobFilter{
		Employer: batchEmployer,
		Status:   filter.StatusWithoutMetadata,
	}
	pending := jobFilter.Apply(ds.Jobs)

	limit := batchLimit
	if limit <= 0 {
		limit = cfg.Batch.Limit
	}
	if len(pending) > limit {
		pending = pending[:limit]
	}

	if len(pending) == 0 {
		logger.Info("nothing to do: all filtered jobs have metadata")
		return nil
	}

	runHistory, err := history.NewSQLiteHistory(cfg.HistoryDB)
	if err != nil {
		logger.Error("failed to open run history", "error", err)
		os.Exit(1)
	}
	defer runHistory.Close()

	logger.Info("starting batch",
		"jobs", len(pending),
		"model", modelID,
		"dataset", cfg.DatasetPath,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := batch.NewRunner(extractor, store, runHistory, modelID, logger)
	result, err := runner.Run(ctx, ds, pending)
	if err != nil {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("processed %d jobs: %d updated, %d failed\n",
		result.Processed, result.Updated, len(result.Failures))
	for _, f := range result.Failures {
		fmt.Printf("  job %d (%s): %v\n", f.JobID, f.JobTitle, f.Err)
	}
	return nil
}
