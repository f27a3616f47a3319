package ai

import (
	"context"
	"fmt"

	"github.com/JaYani55/aitinkerer-demo-101225/internal/model"
)

// NopExtractor is used when no API key is configured and the caller only
// needs browse/export functionality. Every Extract call fails without
// touching the network.
type NopExtractor struct{}

// NewNopExtractor returns a NopExtractor.
func NewNopExtractor() *NopExtractor {
	return &NopExtractor{}
}

// Extract always fails; metadata generation requires a configured provider.
func (n *NopExtractor) Extract(_ context.Context, _ *model.JobListing) (model.Metadata, error) {
	return nil, fmt.Errorf("metadata generation is not configured: set provider.api_key (OPENROUTER_API_KEY)")
}
