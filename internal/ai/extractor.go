package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/JaYani55/aitinkerer-demo-101225/internal/model"
	"github.com/JaYani55/aitinkerer-demo-101225/internal/schema"
)

// MetadataExtractor turns a job listing's free text into a schema-conforming
// metadata object by prompting an LLM. The schema is embedded in the system
// prompt and enforced again on the reply, so a non-error result is guaranteed
// to validate.
type MetadataExtractor struct {
	provider LLMProvider
	schema   *schema.Schema
	tmpl     *template.Template
	logger   *slog.Logger
}

// NewMetadataExtractor creates an extractor wired to the given provider and
// schema. logger must be non-nil; pass a discard handler to silence debug
// output (the TUI does this while it owns the terminal).
func NewMetadataExtractor(provider LLMProvider, s *schema.Schema, tmpl *template.Template, logger *slog.Logger) *MetadataExtractor {
	return &MetadataExtractor{
		provider: provider,
		schema:   s,
		tmpl:     tmpl,
		logger:   logger,
	}
}

// promptJob is the subset of job fields serialized into the user message.
// Field order is fixed by the struct so the prompt is deterministic.
type promptJob struct {
	JobTitle    string `json:"job_title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Department  string `json:"department"`
	Level       string `json:"level"`
	Schedule    string `json:"schedule"`
	Employer    string `json:"employer"`
}

// Extract builds the prompt for job, calls the provider, and parses the reply
// into a validated metadata object. The passed job is never mutated; the
// caller decides whether to attach the result.
//
// Failure modes: *model.ProviderError for network/HTTP/auth failures,
// *model.MalformedResponseError when the reply does not parse or does not
// conform to the schema.
func (e *MetadataExtractor) Extract(ctx context.Context, job *model.JobListing) (model.Metadata, error) {
	var promptBuf bytes.Buffer
	if err := e.tmpl.Execute(&promptBuf, struct{ Schema string }{Schema: e.schema.JSON()}); err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	userContent, err := json.Marshal(promptJob{
		JobTitle:    job.JobTitle,
		Description: job.Description,
		Location:    job.Location,
		Department:  job.Department,
		Level:       job.Level,
		Schedule:    job.Schedule,
		Employer:    job.EmployerName(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal job for prompt: %w", err)
	}

	e.logger.Debug("requesting metadata",
		"job_id", job.ID,
		"title", job.JobTitle,
	)

	raw, err := e.provider.Complete(ctx, promptBuf.String(), string(userContent))
	if err != nil {
		return nil, err
	}

	metadata, err := e.parseReply(raw)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("metadata generated", "job_id", job.ID, "fields", len(metadata))
	return metadata, nil
}

// parseReply strips markdown fences, parses the reply as JSON, and validates
// it against the schema. The whole object is rejected on the first violation;
// partial metadata is never returned.
func (e *MetadataExtractor) parseReply(raw string) (model.Metadata, error) {
	cleaned := stripFences(raw)

	var metadata map[string]any
	if err := json.Unmarshal([]byte(cleaned), &metadata); err != nil {
		return nil, &model.MalformedResponseError{
			Reason: fmt.Sprintf("reply is not valid JSON: %v", err),
			Raw:    raw,
		}
	}

	if err := e.schema.Validate(metadata); err != nil {
		return nil, &model.MalformedResponseError{
			Reason: err.Error(),
			Raw:    raw,
		}
	}

	return model.Metadata(metadata), nil
}

// stripFences removes a surrounding markdown code fence from the reply.
// Some models wrap the JSON in ```json blocks despite the json_object
// response format.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if _, rest, ok := strings.Cut(s, "\n"); ok {
		s = rest
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
