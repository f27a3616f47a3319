// Package dataset owns loading and saving the jobs dataset file. The store
// reads the whole file into memory and writes it back wholesale; there is no
// partial update, locking or versioning (single-user demo assumption).
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaYani55/aitinkerer-demo-101225/internal/model"
)

// Dataset is the in-memory form of a dataset file. Two file shapes exist:
// the mock dataset is a bare JSON array of jobs; the full dataset built by
// `concat` is an object with metadata/employers/jobsources/jobs sections.
// The loaded shape is remembered so Save writes the same shape back.
type Dataset struct {
	// Meta is the "metadata" section of a unified dataset file, passed
	// through untouched. Nil for bare-array datasets.
	Meta       json.RawMessage
	Employers  []model.Employer
	JobSources []model.JobSource
	Jobs       []*model.JobListing

	bareList bool
}

// JobByID returns the job with the given id, or nil.
func (d *Dataset) JobByID(id int) *model.JobListing {
	for _, job := range d.Jobs {
		if job.ID == id {
			return job
		}
	}
	return nil
}

// WithMetadata returns the jobs that have a metadata object attached.
func (d *Dataset) WithMetadata() []*model.JobListing {
	var jobs []*model.JobListing
	for _, job := range d.Jobs {
		if job.HasMetadata() {
			jobs = append(jobs, job)
		}
	}
	return jobs
}

// unifiedFile mirrors the unified dataset file shape produced by `concat`.
type unifiedFile struct {
	Meta       json.RawMessage     `json:"metadata,omitempty"`
	Employers  []model.Employer    `json:"employers"`
	JobSources []model.JobSource   `json:"jobsources"`
	Jobs       []*model.JobListing `json:"jobs"`
}

// Store reads and writes one dataset file.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store for the dataset file at path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the dataset file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the dataset file.
func (s *Store) Load() (*Dataset, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var jobs []*model.JobListing
		if err := json.Unmarshal(data, &jobs); err != nil {
			return nil, fmt.Errorf("parse dataset: %w", err)
		}
		s.logger.Info("dataset loaded", "path", s.path, "jobs", len(jobs))
		return &Dataset{Jobs: jobs, bareList: true}, nil
	}

	var file unifiedFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	s.logger.Info("dataset loaded",
		"path", s.path,
		"jobs", len(file.Jobs),
		"employers", len(file.Employers),
	)
	return &Dataset{
		Meta:       file.Meta,
		Employers:  file.Employers,
		JobSources: file.JobSources,
		Jobs:       file.Jobs,
	}, nil
}

// Save writes the whole dataset back to the file in the shape it was loaded
// in. All-or-nothing: a failed write leaves an error, never a partial file
// appended to.
func (s *Store) Save(ds *Dataset) error {
	var payload any
	if ds.bareList {
		payload = ds.Jobs
	} else {
		payload = unifiedFile{
			Meta:       ds.Meta,
			Employers:  ds.Employers,
			JobSources: ds.JobSources,
			Jobs:       ds.Jobs,
		}
	}

	data, err := marshalIndent(payload)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}

	s.logger.Info("dataset saved", "path", s.path, "jobs", len(ds.Jobs))
	return nil
}

// Export writes {"jobs": [...]} containing only jobs with metadata to path.
func (s *Store) Export(ds *Dataset, path string) (int, error) {
	withMeta := ds.WithMetadata()
	data, err := marshalIndent(map[string]any{"jobs": withMeta})
	if err != nil {
		return 0, fmt.Errorf("marshal export: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("write export: %w", err)
	}
	return len(withMeta), nil
}

// marshalIndent marshals with two-space indentation and without HTML
// escaping, matching how the dataset files were originally written.
func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
