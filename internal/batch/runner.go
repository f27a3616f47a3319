// Package batch runs the metadata extractor over a selected sequence of jobs,
// strictly one at a time: extract, attach on success, record and skip on
// failure, then write the whole dataset back once at the end.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaYani55/aitinkerer-demo-101225/internal/dataset"
	"github.com/JaYani55/aitinkerer-demo-101225/internal/history"
	"github.com/JaYani55/aitinkerer-demo-101225/internal/model"
)

// Extractor produces a metadata object for one job. Implemented by
// ai.MetadataExtractor and ai.NopExtractor.
type Extractor interface {
	Extract(ctx context.Context, job *model.JobListing) (model.Metadata, error)
}

// Failure is one per-job extraction failure. The job's existing metadata is
// left untouched when extraction fails.
type Failure struct {
	JobID    int
	JobTitle string
	Err      error
}

// Result summarizes one batch run.
type Result struct {
	Processed int
	Updated   int
	Failures  []Failure
}

// Runner owns the full batch pipeline for one run:
// extract → attach → record history → save dataset.
type Runner struct {
	extractor Extractor
	store     *dataset.Store
	history   history.Recorder
	modelID   string
	logger    *slog.Logger
}

// NewRunner creates a runner wired with all its dependencies.
func NewRunner(extractor Extractor, store *dataset.Store, h history.Recorder, modelID string, logger *slog.Logger) *Runner {
	return &Runner{
		extractor: extractor,
		store:     store,
		history:   h,
		modelID:   modelID,
		logger:    logger,
	}
}

// Run processes jobs in order. A failed job is recorded and skipped; the run
// never aborts on a per-job failure. Once the sequence is done the whole
// dataset is saved, all records included, so failed jobs keep their previous
// state on disk. The returned error is non-nil only when the final save
// fails; per-job failures are in Result.Failures.
//
// Cancelling ctx stops the run before the next job; jobs already updated in
// memory are still saved.
func (r *Runner) Run(ctx context.Context, ds *dataset.Dataset, jobs []*model.JobListing) (Result, error) {
	result := Result{}

	for i, job := range jobs {
		if ctx.Err() != nil {
			r.logger.Warn("batch cancelled", "processed", result.Processed, "remaining", len(jobs)-i)
			break
		}

		r.logger.Info("processing job",
			"position", fmt.Sprintf("%d/%d", i+1, len(jobs)),
			"job_id", job.ID,
			"title", job.JobTitle,
		)

		start := time.Now()
		metadata, err := r.extractor.Extract(ctx, job)
		elapsed := time.Since(start)
		result.Processed++

		if err != nil {
			result.Failures = append(result.Failures, Failure{
				JobID:    job.ID,
				JobTitle: job.JobTitle,
				Err:      err,
			})
			r.recordAttempt(job.ID, err, elapsed)
			r.logFailure(job.ID, err)
			continue
		}

		job.CategorizedData = metadata
		result.Updated++
		r.recordAttempt(job.ID, nil, elapsed)
		r.logger.Info("metadata attached", "job_id", job.ID, "duration", elapsed)
	}

	if err := r.store.Save(ds); err != nil {
		return result, fmt.Errorf("batch save: %w", err)
	}

	r.logger.Info("batch complete",
		"processed", result.Processed,
		"updated", result.Updated,
		"failed", len(result.Failures),
	)

	return result, nil
}

// recordAttempt writes the attempt to the run history. History failures are
// logged, never fatal; the dataset save is what matters.
func (r *Runner) recordAttempt(jobID int, extractErr error, elapsed time.Duration) {
	attempt := history.Attempt{
		JobID:    jobID,
		Model:    r.modelID,
		Status:   history.StatusOK,
		Duration: elapsed,
	}
	if extractErr != nil {
		attempt.Status = classify(extractErr)
		attempt.Error = extractErr.Error()
	}
	if err := r.history.Record(attempt); err != nil {
		r.logger.Warn("failed to record attempt", "job_id", jobID, "error", err)
	}
}

// logFailure logs a per-job failure with enough context to diagnose it,
// including a snippet of the raw reply for malformed responses.
func (r *Runner) logFailure(jobID int, err error) {
	var malformed *model.MalformedResponseError
	if errors.As(err, &malformed) {
		r.logger.Error("extraction failed",
			"job_id", jobID,
			"error", err,
			"raw", malformed.RawSnippet(200),
		)
		return
	}
	r.logger.Error("extraction failed", "job_id", jobID, "error", err)
}

// classify maps an extraction error to a history status.
func classify(err error) string {
	var malformed *model.MalformedResponseError
	if errors.As(err, &malformed) {
		return history.StatusMalformed
	}
	return history.StatusProvider
}
