// Package tools implements the tool-calling surface: a fixed registry of
// RAG operations dispatched by name. Every tool handler is an error
// boundary: failures travel in-band as a structured {error} result and
// never escape the handler.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
)

const defaultTopK = 5

// Definition describes a tool for discovery. Immutable, one per tool.
type Definition struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	InputSchema  map[string]any `json:"input_schema"`
	OutputSchema map[string]any `json:"output_schema"`
}

// Result is the outcome of a tool invocation: either a success payload or
// an error message, never both. It marshals to the payload itself on
// success and to {"error": "..."} on failure.
type Result struct {
	Data any
	Err  string
}

// OK wraps a success payload.
func OK(data any) Result { return Result{Data: data} }

// Errf builds an error result.
func Errf(format string, args ...any) Result {
	return Result{Err: fmt.Sprintf(format, args...)}
}

// Failed reports whether the result carries an error.
func (r Result) Failed() bool { return r.Err != "" }

// MarshalJSON implements json.Marshaler.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != "" {
		return json.Marshal(map[string]string{"error": r.Err})
	}
	return json.Marshal(r.Data) //nolint:wrapcheck // delegating to encoding/json
}

// Tool couples a definition with its handler.
type Tool interface {
	Definition() Definition
	Invoke(ctx context.Context, payload json.RawMessage) Result
}

// normalizeTopK coerces an arbitrary top_k payload value to a positive
// integer, silently falling back to the default on anything else.
func normalizeTopK(v any) int {
	if n, ok := v.(float64); ok && n >= 1 && n == math.Trunc(n) {
		return int(n)
	}
	return defaultTopK
}

// roundScore rounds a similarity score to 4 decimal places.
func roundScore(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
