package model

// JobListing is one record of the jobs dataset. JSON field names match the
// dataset files produced by the CSV exports so datasets round-trip unchanged
// through load/save.
type JobListing struct {
	ID          int    `json:"id"`
	JobTitle    string `json:"job_title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Department  string `json:"department,omitempty"`
	Level       string `json:"level,omitempty"`
	Location    string `json:"location,omitempty"`
	Schedule    string `json:"schedule,omitempty"`

	Main     bool `json:"main"`
	Sync     bool `json:"sync"`
	Ignore   bool `json:"ignore"`
	Removed  bool `json:"removed"`
	Manual   bool `json:"manual"`
	Archived bool `json:"Archived"`
	Ideal    bool `json:"ideal"`

	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
	SourceTable string `json:"source_table,omitempty"`
	Clicks      int    `json:"clicks"`

	// OriginalID is set for archived jobs that were copied from the active table.
	OriginalID *int `json:"original_id,omitempty"`

	Employer  *Employer  `json:"employer"`
	JobSource *JobSource `json:"jobsource"`

	// CategorizedData is the LLM-generated metadata object, nil until generated.
	CategorizedData Metadata `json:"CategorizedData"`

	// JobEmbedding is carried through only when the dataset was built with
	// --include-embeddings; never touched by the extractor.
	JobEmbedding any `json:"job_embedding,omitempty"`
}

// Metadata is the structured metadata object produced by the extractor.
// Keys and value shapes are constrained by the schema document; validation
// happens once at the extractor boundary, so the rest of the system can treat
// a non-nil Metadata as schema-conforming.
type Metadata map[string]any

// HasMetadata reports whether the job has a non-empty metadata object.
func (j *JobListing) HasMetadata() bool {
	return len(j.CategorizedData) > 0
}

// EmployerName returns the employer name or "Unknown" when the employer
// relation is unresolved.
func (j *JobListing) EmployerName() string {
	if j.Employer == nil || j.Employer.Name == "" {
		return "Unknown"
	}
	return j.Employer.Name
}

// Employer is the resolved employer relation embedded in each job.
type Employer struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	AltName string `json:"alt_name,omitempty"`
	LogoURL string `json:"logo_url,omitempty"`

	// Full-record fields, present only in the top-level employers list.
	FH              bool `json:"fh,omitempty"`
	JobsCount       int  `json:"jobscount,omitempty"`
	JobsCountOnline int  `json:"jobscount_online,omitempty"`
}

// JobSource is the resolved jobsource relation embedded in each job.
type JobSource struct {
	JobSourceID int    `json:"jobsource_id"`
	JobSource   string `json:"jobsource"`
	Description string `json:"description,omitempty"`
}
