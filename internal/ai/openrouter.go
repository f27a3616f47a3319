package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/JaYani55/aitinkerer-demo-101225/internal/model"
)

// OpenRouterProvider calls the OpenRouter /chat/completions endpoint.
// OpenRouter speaks the OpenAI wire format and routes to the vendor named in
// the model identifier (e.g. "openai/gpt-4o-mini").
type OpenRouterProvider struct {
	baseURL    string
	apiKey     string
	model      string
	referer    string
	appTitle   string
	httpClient *http.Client
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
// referer and appTitle fill the HTTP-Referer and X-Title attribution headers
// OpenRouter uses for app rankings; either may be empty.
func NewOpenRouterProvider(baseURL, apiKey, modelID, referer, appTitle string, httpClient *http.Client) *OpenRouterProvider {
	return &OpenRouterProvider{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      modelID,
		referer:    referer,
		appTitle:   appTitle,
		httpClient: httpClient,
	}
}

// Model returns the configured model identifier.
func (p *OpenRouterProvider) Model() string {
	return p.model
}

// chatRequest mirrors the OpenAI-compatible /chat/completions request body.
type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatResponse mirrors the relevant fields of the OpenRouter response.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// Complete sends the prompt pair to OpenRouter and returns the model's text
// reply. Network, auth and HTTP-level failures come back as *model.ProviderError
// so callers can branch on the status code.
func (p *OpenRouterProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    0.2,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal llm request: %w", err)
	}

	url := p.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	if p.referer != "" {
		req.Header.Set("HTTP-Referer", p.referer)
	}
	if p.appTitle != "" {
		req.Header.Set("X-Title", p.appTitle)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &model.ProviderError{Err: err}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &model.ProviderError{Err: fmt.Errorf("read llm response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &model.ProviderError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("%s", string(respBytes)),
		}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return "", &model.ProviderError{Err: fmt.Errorf("parse llm response: %w", err)}
	}

	// OpenRouter can return 200 with an error object for upstream failures.
	if chatResp.Error != nil {
		return "", &model.ProviderError{
			StatusCode: chatResp.Error.Code,
			Err:        fmt.Errorf("%s", chatResp.Error.Message),
		}
	}

	if len(chatResp.Choices) == 0 {
		return "", &model.ProviderError{Err: fmt.Errorf("llm returned no choices")}
	}

	return chatResp.Choices[0].Message.Content, nil
}

// parseRetryAfter handles the delay-seconds form of the Retry-After header.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
