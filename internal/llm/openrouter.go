// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ZJashi/math-conjecturer/internal/httputil"
	"github.com/ZJashi/math-conjecturer/pkg/types"
)

// defaultBaseURL is the OpenRouter chat-completions endpoint.
const defaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouter calls the OpenRouter chat-completions API. Rate-limit responses
// are retried with backoff by the underlying HTTP helper; every other failure
// surfaces as a TransportError so the coercion layer decides what to do.
type OpenRouter struct {
	APIKey     string
	Model      string
	BaseURL    string
	UserAgent  string
	MaxRetries int
	Client     *http.Client
}

// NewOpenRouter builds a client from the pipeline configuration.
func NewOpenRouter(ai types.AIConfig, httpCfg types.HTTPConfig) *OpenRouter {
	base := ai.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &OpenRouter{
		APIKey:     ai.APIKey,
		Model:      ai.Model,
		BaseURL:    base,
		UserAgent:  httpCfg.UserAgent,
		MaxRetries: ai.MaxRetries,
		Client:     &http.Client{Timeout: httpCfg.Timeout},
	}
}

// chatRequest is the request body for the chat-completions API.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat json.RawMessage `json:"response_format,omitempty"`
}

// chatResponse is the subset of the response body we read.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// wireFormat renders the response_format field for the provider.
func wireFormat(f *ResponseFormat) (json.RawMessage, error) {
	if f == nil {
		return nil, nil
	}
	switch f.Type {
	case FormatJSONObject:
		return json.Marshal(map[string]string{"type": "json_object"})
	case FormatJSONSchema:
		return json.Marshal(map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   f.Name,
				"strict": true,
				"schema": f.Schema,
			},
		})
	}
	return nil, fmt.Errorf("unknown response format type %q", f.Type)
}

// Invoke sends one chat completion and returns the assistant's text.
func (o *OpenRouter) Invoke(ctx context.Context, req Request) (string, error) {
	if o.APIKey == "" {
		return "", &TransportError{Err: fmt.Errorf("openrouter API key not set")}
	}

	format, err := wireFormat(req.Format)
	if err != nil {
		return "", &TransportError{Err: err}
	}

	body, err := json.Marshal(chatRequest{
		Model:          o.Model,
		Messages:       req.Messages,
		Temperature:    req.Temperature,
		ResponseFormat: format,
	})
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("marshaling request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("creating request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.APIKey)
	if o.UserAgent != "" {
		httpReq.Header.Set("User-Agent", o.UserAgent)
	}

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, httpReq, o.MaxRetries)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		b, _ := io.ReadAll(resp.Body)
		return "", &RateLimitError{Body: string(b)}
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", &TransportError{Status: resp.StatusCode, Body: string(b)}
	}

	var cResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", &TransportError{Err: fmt.Errorf("decoding response: %w", err)}
	}
	if len(cResp.Choices) == 0 {
		return "", &TransportError{Err: fmt.Errorf("response contained no choices")}
	}

	return cResp.Choices[0].Message.Content, nil
}
