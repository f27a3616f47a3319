package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaYani55/aitinkerer-demo-101225/internal/model"
)

// freshOutput is the unified dataset without the metadata section, the
// starting point for a new round of metadata generation.
type freshOutput struct {
	Employers  []model.Employer    `json:"employers"`
	JobSources []model.JobSource   `json:"jobsources"`
	Jobs       []*model.JobListing `json:"jobs"`
}

// FreshDataset reads a unified dataset at inputPath, clears CategorizedData
// from every job, drops the dataset metadata section, and writes the result
// to outputPath.
func FreshDataset(inputPath, outputPath string, logger *slog.Logger) (int, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return 0, fmt.Errorf("read input dataset: %w", err)
	}

	var in struct {
		Employers  []model.Employer    `json:"employers"`
		JobSources []model.JobSource   `json:"jobsources"`
		Jobs       []*model.JobListing `json:"jobs"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return 0, fmt.Errorf("parse input dataset: %w", err)
	}

	for _, job := range in.Jobs {
		job.CategorizedData = nil
	}

	out := freshOutput{
		Employers:  in.Employers,
		JobSources: in.JobSources,
		Jobs:       in.Jobs,
	}
	if err := writeJSON(outputPath, out); err != nil {
		return 0, err
	}

	logger.Info("fresh dataset written",
		"path", outputPath,
		"jobs", len(out.Jobs),
		"employers", len(out.Employers),
	)
	return len(out.Jobs), nil
}
