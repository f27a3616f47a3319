package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaYani55/aitinkerer-demo-101225/internal/history"
	"github.com/JaYani55/aitinkerer-demo-101225/internal/model"
)

var (
	generateJobID int
	generateModel string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate metadata for a single job",
	Long:  "Runs the extractor for one job by id, saves the dataset, and records the attempt in the run history.",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&generateJobID, "id", 0, "job id to generate metadata for (required)")
	generateCmd.Flags().StringVar(&generateModel, "model", "", "override the configured model for this run")
	generateCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	extractor, modelID, err := buildExtractor(cfg, generateModel, logger)
	if err != nil {
		logger.Error("failed to set up extractor", "error", err)
		os.Exit(1)
	}

	store, ds, err := openDataset(cfg, logger)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}

	job := ds.JobByID(generateJobID)
	if job == nil {
		logger.Error("job not found", "job_id", generateJobID)
		os.Exit(1)
	}

	runHistory, err := history.NewSQLiteHistory(cfg.HistoryDB)
	if err != nil {
		logger.Error("failed to open run history", "error", err)
		os.Exit(1)
	}
	defer runHistory.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("generating metadata", "job_id", job.ID, "title", job.JobTitle, "model", modelID)

	start := time.Now()
	metadata, extractErr := extractor.Extract(ctx, job)
	elapsed := time.Since(start)

	attempt := history.Attempt{JobID: job.ID, Model: modelID, Status: history.StatusOK, Duration: elapsed}
	if extractErr != nil {
		attempt.Status = history.StatusProvider
		var malformed *model.MalformedResponseError
		if errors.As(extractErr, &malformed) {
			attempt.Status = history.StatusMalformed
		}
		attempt.Error = extractErr.Error()
	}
	if err := runHistory.Record(attempt); err != nil {
		logger.Warn("failed to record attempt", "error", err)
	}

	if extractErr != nil {
		logger.Error("extraction failed", "job_id", job.ID, "error", extractErr)
		os.Exit(1)
	}

	job.CategorizedData = metadata
	if err := store.Save(ds); err != nil {
		logger.Error("failed to save dataset", "error", err)
		os.Exit(1)
	}

	logger.Info("metadata generated", "job_id", job.ID, "duration", elapsed)
	for key, value := range metadata {
		fmt.Printf("  %s: %v\n", key, value)
	}
	return nil
}
