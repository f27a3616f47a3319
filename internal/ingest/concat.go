// Package ingest builds JSON datasets from the raw CSV table exports:
// `concat` merges the jobs, archived-jobs, employers and jobsource tables
// into one unified dataset file with resolved relations, and `freshdataset`
// strips generated metadata from a unified dataset. Both are simple linear
// transforms with no state beyond the files involved.
package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/JaYani55/aitinkerer-demo-101225/internal/model"
)

// ConcatOptions controls the CSV merge.
type ConcatOptions struct {
	DataDir    string // directory holding the four *_rows.csv exports
	OutputPath string

	// IncludeEmbeddings carries the job_embedding column through to the
	// output; off by default because it inflates the file considerably.
	IncludeEmbeddings bool

	// IncludeDescriptions carries job descriptions through; on by default.
	IncludeDescriptions bool
}

// ConcatSummary reports what the merge produced.
type ConcatSummary struct {
	TotalJobs    int
	ActiveJobs   int
	ArchivedJobs int
	Employers    int
	JobSources   int
}

// datasetMeta is the "metadata" section of the unified dataset file.
type datasetMeta struct {
	GeneratedAt         string `json:"generated_at"`
	TotalJobs           int    `json:"total_jobs"`
	ActiveJobs          int    `json:"active_jobs"`
	ArchivedJobs        int    `json:"archived_jobs"`
	TotalEmployers      int    `json:"total_employers"`
	TotalJobSources     int    `json:"total_jobsources"`
	IncludeEmbeddings   bool   `json:"include_embeddings"`
	IncludeDescriptions bool   `json:"include_descriptions"`
}

type unifiedOutput struct {
	Metadata   datasetMeta         `json:"metadata"`
	Employers  []model.Employer    `json:"employers"`
	JobSources []model.JobSource   `json:"jobsources"`
	Jobs       []*model.JobListing `json:"jobs"`
}

// Concat merges the CSV exports under opts.DataDir into a unified dataset
// file at opts.OutputPath.
func Concat(opts ConcatOptions, logger *slog.Logger) (ConcatSummary, error) {
	var summary ConcatSummary

	jobsActive, err := readCSV(filepath.Join(opts.DataDir, "jobs_rows.csv"))
	if err != nil {
		return summary, err
	}
	jobsArchived, err := readCSV(filepath.Join(opts.DataDir, "jobs_archiviert_rows.csv"))
	if err != nil {
		return summary, err
	}
	employersTable, err := readCSV(filepath.Join(opts.DataDir, "employers_rows.csv"))
	if err != nil {
		return summary, err
	}
	sourcesTable, err := readCSV(filepath.Join(opts.DataDir, "jobsource_rows.csv"))
	if err != nil {
		return summary, err
	}

	logger.Info("csv tables loaded",
		"active_jobs", len(jobsActive.rows),
		"archived_jobs", len(jobsArchived.rows),
		"employers", len(employersTable.rows),
		"jobsources", len(sourcesTable.rows),
	)

	employers := parseEmployers(employersTable)
	sources := parseJobSources(sourcesTable)

	var jobs []*model.JobListing
	for _, row := range jobsActive.rows {
		job := parseJob(jobsActive, row, "active", opts, employers, sources)
		jobs = append(jobs, job)
		summary.ActiveJobs++
	}
	for _, row := range jobsArchived.rows {
		job := parseJob(jobsArchived, row, "archived", opts, employers, sources)
		jobs = append(jobs, job)
		summary.ArchivedJobs++
	}
	summary.TotalJobs = len(jobs)
	summary.Employers = len(employers)
	summary.JobSources = len(sources)

	out := unifiedOutput{
		Metadata: datasetMeta{
			GeneratedAt:         time.Now().Format(time.RFC3339),
			TotalJobs:           summary.TotalJobs,
			ActiveJobs:          summary.ActiveJobs,
			ArchivedJobs:        summary.ArchivedJobs,
			TotalEmployers:      summary.Employers,
			TotalJobSources:     summary.JobSources,
			IncludeEmbeddings:   opts.IncludeEmbeddings,
			IncludeDescriptions: opts.IncludeDescriptions,
		},
		Employers:  employerList(employers),
		JobSources: sourceList(sources),
		Jobs:       jobs,
	}

	if err := writeJSON(opts.OutputPath, out); err != nil {
		return summary, err
	}

	logger.Info("unified dataset written", "path", opts.OutputPath, "jobs", summary.TotalJobs)
	return summary, nil
}

func parseEmployers(t *table) map[int]model.Employer {
	employers := make(map[int]model.Employer, len(t.rows))
	for _, row := range t.rows {
		id := t.getInt(row, "id")
		employers[id] = model.Employer{
			ID:              id,
			Name:            t.get(row, "name"),
			AltName:         t.get(row, "alt_name"),
			LogoURL:         t.get(row, "logo_url"),
			FH:              t.getBool(row, "fh"),
			JobsCount:       t.getInt(row, "jobscount"),
			JobsCountOnline: t.getInt(row, "jobscount_online"),
		}
	}
	return employers
}

func parseJobSources(t *table) map[int]model.JobSource {
	sources := make(map[int]model.JobSource, len(t.rows))
	for _, row := range t.rows {
		id := t.getInt(row, "jobsource_id")
		sources[id] = model.JobSource{
			JobSourceID: id,
			JobSource:   t.get(row, "jobsource"),
			Description: t.get(row, "description"),
		}
	}
	return sources
}

func parseJob(t *table, row []string, sourceTable string, opts ConcatOptions, employers map[int]model.Employer, sources map[int]model.JobSource) *model.JobListing {
	job := &model.JobListing{
		ID:          t.getInt(row, "id"),
		JobTitle:    t.get(row, "job_title"),
		URL:         t.get(row, "url"),
		Department:  t.get(row, "department"),
		Level:       t.get(row, "level"),
		Location:    t.get(row, "location"),
		Schedule:    t.get(row, "schedule"),
		Main:        t.getBool(row, "main"),
		Sync:        t.getBool(row, "sync"),
		Ignore:      t.getBool(row, "ignore"),
		Removed:     t.getBool(row, "removed"),
		Manual:      t.getBool(row, "manual"),
		Archived:    t.getBool(row, "Archived"),
		Ideal:       t.getBool(row, "ideal"),
		CreatedAt:   t.get(row, "created_at"),
		UpdatedAt:   t.get(row, "updated_at"),
		SourceTable: sourceTable,
		Clicks:      t.getInt(row, "clicks"),
	}

	if opts.IncludeDescriptions {
		job.Description = t.get(row, "description")
	}
	if opts.IncludeEmbeddings {
		if raw := t.get(row, "job_embedding"); raw != "" {
			job.JobEmbedding = raw
		}
	}

	// Archived jobs keep a pointer back to their original active-table row.
	if t.has("original_id") {
		if id := t.getInt(row, "original_id"); id != 0 {
			job.OriginalID = &id
		}
	}

	// CategorizedData is stored as a JSON string column; invalid or empty
	// values become null rather than failing the whole merge.
	if raw := t.get(row, "CategorizedData"); raw != "" {
		var metadata map[string]any
		if err := json.Unmarshal([]byte(raw), &metadata); err == nil {
			job.CategorizedData = metadata
		}
	}

	// Resolve relations to the embedded short forms.
	if employerID := t.getInt(row, "employer_id"); employerID != 0 {
		if e, ok := employers[employerID]; ok {
			job.Employer = &model.Employer{
				ID:      e.ID,
				Name:    e.Name,
				AltName: e.AltName,
				LogoURL: e.LogoURL,
			}
		}
	}
	if sourceID := t.getInt(row, "jobsource_id"); sourceID != 0 {
		if s, ok := sources[sourceID]; ok {
			job.JobSource = &model.JobSource{
				JobSourceID: s.JobSourceID,
				JobSource:   s.JobSource,
			}
		}
	}

	return job
}

func employerList(m map[int]model.Employer) []model.Employer {
	list := make([]model.Employer, 0, len(m))
	for _, e := range m {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func sourceList(m map[int]model.JobSource) []model.JobSource {
	list := make([]model.JobSource, 0, len(m))
	for _, s := range m {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].JobSourceID < list[j].JobSourceID })
	return list
}

func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
