package model

import (
	"fmt"
	"time"
)

// ProviderError wraps a failed LLM provider call so retry logic can inspect
// the HTTP status code. StatusCode is 0 for transport-level failures.
type ProviderError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("provider: %v", e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("provider HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider HTTP %d", e.StatusCode)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// MalformedResponseError means the model replied, but the reply did not parse
// as JSON or did not conform to the metadata schema. Raw carries the reply
// text for diagnostics; the batch runner logs a snippet of it.
type MalformedResponseError struct {
	Reason string
	Raw    string
}

func (e *MalformedResponseError) Error() string {
	return "malformed response: " + e.Reason
}

// RawSnippet returns at most n bytes of the raw reply for log output.
func (e *MalformedResponseError) RawSnippet(n int) string {
	if len(e.Raw) <= n {
		return e.Raw
	}
	return e.Raw[:n] + "..."
}
