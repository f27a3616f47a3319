package ai

import "context"

// LLMProvider sends a system/user prompt pair to an LLM and returns the raw
// text reply. Used only by MetadataExtractor; not exported to the rest of
// the system.
type LLMProvider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
