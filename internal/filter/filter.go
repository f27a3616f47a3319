package filter

import (
	"sort"
	"strings"

	"github.com/JaYani55/aitinkerer-demo-101225/internal/model"
)

// MetadataStatus narrows jobs by whether metadata has been generated yet.
type MetadataStatus int

const (
	StatusAll MetadataStatus = iota
	StatusWithMetadata
	StatusWithoutMetadata
)

func (s MetadataStatus) String() string {
	switch s {
	case StatusWithMetadata:
		return "with metadata"
	case StatusWithoutMetadata:
		return "without metadata"
	default:
		return "all"
	}
}

// JobFilter matches jobs by employer name and metadata status. Matching on
// the employer is a case-insensitive substring check; an empty employer
// matches all. Archived jobs are excluded unless IncludeArchived is set.
type JobFilter struct {
	Employer        string
	Status          MetadataStatus
	IncludeArchived bool
}

// Match reports whether the job passes the filter.
func (f JobFilter) Match(job *model.JobListing) bool {
	if job.Archived && !f.IncludeArchived {
		return false
	}

	if f.Employer != "" {
		name := strings.ToLower(job.EmployerName())
		if !strings.Contains(name, strings.ToLower(f.Employer)) {
			return false
		}
	}

	switch f.Status {
	case StatusWithMetadata:
		return job.HasMetadata()
	case StatusWithoutMetadata:
		return !job.HasMetadata()
	}

	return true
}

// Apply returns the jobs that pass the filter, preserving order.
func (f JobFilter) Apply(jobs []*model.JobListing) []*model.JobListing {
	var matched []*model.JobListing
	for _, job := range jobs {
		if f.Match(job) {
			matched = append(matched, job)
		}
	}
	return matched
}

// EmployerNames returns the sorted distinct employer names across jobs.
func EmployerNames(jobs []*model.JobListing) []string {
	seen := make(map[string]bool)
	var names []string
	for _, job := range jobs {
		name := job.EmployerName()
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
