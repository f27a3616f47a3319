package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JaYani55/aitinkerer-demo-101225/internal/model"
)

func chatReply(content string) chatResponse {
	var resp chatResponse
	resp.Choices = make([]struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}, 1)
	resp.Choices[0].Message.Content = content
	return resp
}

func makeTestServer(t *testing.T, statusCode int, body any) (*httptest.Server, *http.Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, srv.Client()
}

func newTestProvider(srvURL string, client *http.Client) *OpenRouterProvider {
	return NewOpenRouterProvider(srvURL, "test-key", "openai/gpt-4o-mini", "https://example.org", "MetadataGen Test", client)
}

func TestComplete_Success(t *testing.T) {
	srv, client := makeTestServer(t, http.StatusOK, chatReply(`{"Arbeitszeit":"Vollzeit"}`))

	provider := newTestProvider(srv.URL, client)
	got, err := provider.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"Arbeitszeit":"Vollzeit"}` {
		t.Errorf("got %q, want json string", got)
	}
}

func TestComplete_HTTPErrorCarriesStatus(t *testing.T) {
	srv, client := makeTestServer(t, http.StatusInternalServerError, map[string]string{"error": "server error"})

	provider := newTestProvider(srv.URL, client)
	_, err := provider.Complete(context.Background(), "system", "user")

	var provErr *model.ProviderError
	if !errors.As(err, &provErr) || provErr.StatusCode != 500 {
		t.Fatalf("expected ProviderError with status 500, got %v", err)
	}
}

func TestComplete_RateLimitedWithRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	provider := newTestProvider(srv.URL, srv.Client())
	_, err := provider.Complete(context.Background(), "system", "user")

	var provErr *model.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.StatusCode != 429 {
		t.Errorf("StatusCode = %d, want 429", provErr.StatusCode)
	}
	if provErr.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", provErr.RetryAfter)
	}
}

func TestComplete_EmbeddedErrorObject(t *testing.T) {
	// OpenRouter can answer 200 with an error payload for upstream failures.
	body := map[string]any{"error": map[string]any{"message": "model overloaded", "code": 502}}
	srv, client := makeTestServer(t, http.StatusOK, body)

	provider := newTestProvider(srv.URL, client)
	_, err := provider.Complete(context.Background(), "system", "user")

	var provErr *model.ProviderError
	if !errors.As(err, &provErr) || provErr.StatusCode != 502 {
		t.Fatalf("expected ProviderError with status 502, got %v", err)
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv, client := makeTestServer(t, http.StatusOK, chatResponse{})

	provider := newTestProvider(srv.URL, client)
	if _, err := provider.Complete(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected error when the model returns no choices")
	}
}

func TestComplete_SetsAuthAndAttributionHeaders(t *testing.T) {
	var gotAuth, gotReferer, gotTitle string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatReply("ok"))
	}))
	defer srv.Close()

	provider := newTestProvider(srv.URL, srv.Client())
	_, _ = provider.Complete(context.Background(), "system", "user")

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer test-key")
	}
	if gotReferer != "https://example.org" {
		t.Errorf("HTTP-Referer = %q", gotReferer)
	}
	if gotTitle != "MetadataGen Test" {
		t.Errorf("X-Title = %q", gotTitle)
	}
}

func TestComplete_RequestBody(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatReply("{}"))
	}))
	defer srv.Close()

	provider := newTestProvider(srv.URL, srv.Client())
	_, _ = provider.Complete(context.Background(), "das System", "der Nutzer")

	if gotReq.Model != "openai/gpt-4o-mini" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if gotReq.Temperature != 0.2 {
		t.Errorf("temperature = %v, want 0.2", gotReq.Temperature)
	}
	if gotReq.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format.type = %q, want json_object", gotReq.ResponseFormat.Type)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestComplete_TransportErrorHasZeroStatus(t *testing.T) {
	provider := NewOpenRouterProvider("http://127.0.0.1:1", "key", "m", "", "", &http.Client{Timeout: 200 * time.Millisecond})
	_, err := provider.Complete(context.Background(), "s", "u")

	var provErr *model.ProviderError
	if !errors.As(err, &provErr) || provErr.StatusCode != 0 {
		t.Fatalf("expected transport-level ProviderError, got %v", err)
	}
}
