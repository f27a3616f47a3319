package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/metadata_extraction.md
var metadataPromptRaw string

// MetadataPromptTemplate is the parsed system-prompt template for metadata
// extraction. Parsed once at package init; reused on every Extract call.
// The German instructions match the categories of the schema document.
var MetadataPromptTemplate = template.Must(template.New("metadata_extraction").Parse(metadataPromptRaw))
