// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps the chat-completion endpoint used by all pipeline stages.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Message roles as they appear on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FormatType selects the structured-output mode requested from the model.
type FormatType string

const (
	// FormatJSONSchema asks for output constrained to an exact JSON schema.
	FormatJSONSchema FormatType = "json_schema"

	// FormatJSONObject asks for any well-formed JSON object.
	FormatJSONObject FormatType = "json_object"
)

// ResponseFormat carries the structured-output request, if any.
type ResponseFormat struct {
	Type FormatType

	// Name labels the schema for the provider. Only used with FormatJSONSchema.
	Name string

	// Schema is the JSON-schema document. Only used with FormatJSONSchema.
	Schema json.RawMessage
}

// Request is a single chat-completion invocation.
type Request struct {
	Messages    []Message
	Temperature float64
	Format      *ResponseFormat
}

// Client abstracts the model endpoint so tests can supply a deterministic stub.
type Client interface {
	Invoke(ctx context.Context, req Request) (string, error)
}

// TransportError reports a network, HTTP, or decode failure talking to the
// model endpoint. Status is zero when the request never completed.
type TransportError struct {
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model transport: %v", e.Err)
	}
	return fmt.Sprintf("model endpoint returned %d: %s", e.Status, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RateLimitError reports that the endpoint kept rate-limiting after the
// retry budget was exhausted.
type RateLimitError struct {
	Body string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("model endpoint rate limited after retries: %s", e.Body)
}

// System and User are small helpers for building message lists.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message   { return Message{Role: RoleUser, Content: content} }
