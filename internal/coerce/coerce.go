// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package coerce

import (
	"context"
	"log/slog"
	"time"

	"github.com/ZJashi/math-conjecturer/internal/llm"
)

// backoffBase is the unit delay between retries of a failed model call.
// Overridden in tests.
var backoffBase = 2 * time.Second

// Coercer drives structured-output calls through a chain of progressively
// weaker strategies: native schema-constrained decoding, generic JSON-object
// mode, a prompt-engineered plain call, and finally a synthesized default
// record. It never returns a record that fails schema validation.
type Coercer struct {
	Client llm.Client

	// MaxAttempts bounds model calls per strategy. Transport errors retry
	// with exponential backoff up to this count; a response that parses
	// but fails validation falls through to the next strategy instead.
	MaxAttempts int

	Logger *slog.Logger
}

func (c *Coercer) attempts() int {
	if c.MaxAttempts > 0 {
		return c.MaxAttempts
	}
	return 3
}

func (c *Coercer) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Invoke runs the fallback chain for one record and decodes the result into
// T. The only error it returns is context cancellation; every other failure
// mode degrades to the next strategy and ultimately to the default record.
func Invoke[T any](ctx context.Context, c *Coercer, schema Schema, msgs []llm.Message, temperature float64) (T, error) {
	stages := []struct {
		name string
		req  llm.Request
	}{
		{"json_schema", llm.Request{
			Messages:    msgs,
			Temperature: temperature,
			Format: &llm.ResponseFormat{
				Type:   llm.FormatJSONSchema,
				Name:   schema.Name,
				Schema: schema.JSONSchema(),
			},
		}},
		{"json_object", llm.Request{
			Messages:    msgs,
			Temperature: temperature,
			Format:      &llm.ResponseFormat{Type: llm.FormatJSONObject},
		}},
		{"prompt", llm.Request{
			Messages:    withInstructions(msgs, schema),
			Temperature: temperature,
		}},
	}

	var zero T
	for _, stage := range stages {
		obj, ok, err := c.runStage(ctx, stage.name, schema, stage.req)
		if err != nil {
			return zero, err
		}
		if !ok {
			continue
		}
		out, derr := decode[T](obj)
		if derr != nil {
			c.logger().Warn("decoding validated record failed, trying next strategy",
				"schema", schema.Name, "strategy", stage.name, "error", derr)
			continue
		}
		return out, nil
	}

	c.logger().Error("all coercion strategies exhausted, synthesizing default record",
		"schema", schema.Name)
	return decode[T](schema.Default())
}

// runStage makes up to MaxAttempts calls with one strategy. It returns the
// first object that parses and validates, ok=false to fall through, or an
// error only on context cancellation.
func (c *Coercer) runStage(ctx context.Context, name string, schema Schema, req llm.Request) (map[string]any, bool, error) {
	for attempt := 0; attempt < c.attempts(); attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		if attempt > 0 {
			if err := sleep(ctx, backoffBase<<(attempt-1)); err != nil {
				return nil, false, err
			}
		}

		text, err := c.Client.Invoke(ctx, req)
		if err != nil {
			// A per-call HTTP deadline surfaces as a deadline-exceeded
			// error too; only the caller's own context decides whether
			// the run is over. Everything else is a transport failure
			// and gets retried.
			if cerr := ctx.Err(); cerr != nil {
				return nil, false, cerr
			}
			c.logger().Warn("model call failed",
				"schema", schema.Name, "strategy", name, "attempt", attempt+1, "error", err)
			continue
		}

		obj, ok := ExtractJSON(text)
		if !ok {
			c.logger().Warn("no JSON object found in response, trying next strategy",
				"schema", schema.Name, "strategy", name)
			return nil, false, nil
		}
		if verr := schema.Validate(obj); verr != nil {
			c.logger().Warn("response failed schema validation, trying next strategy",
				"schema", schema.Name, "strategy", name, "error", verr)
			return nil, false, nil
		}
		return obj, true, nil
	}
	c.logger().Warn("strategy exhausted its retries",
		"schema", schema.Name, "strategy", name)
	return nil, false, nil
}

func withInstructions(msgs []llm.Message, schema Schema) []llm.Message {
	out := make([]llm.Message, len(msgs))
	copy(out, msgs)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i].Role == llm.RoleUser {
			out[i].Content += "\n\n" + schema.PromptInstructions()
			return out
		}
	}
	return append(out, llm.User(schema.PromptInstructions()))
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
