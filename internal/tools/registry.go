package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/metrics"
)

// Registry is an immutable name → tool mapping built once at startup.
// Enumeration order is the registration order.
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry builds a registry from the given tools, preserving order.
func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{
		order: make([]string, 0, len(ts)),
		tools: make(map[string]Tool, len(ts)),
	}
	for _, t := range ts {
		name := t.Definition().Name
		if _, dup := r.tools[name]; dup {
			panic("duplicate tool name: " + name)
		}
		r.order = append(r.order, name)
		r.tools[name] = t
	}
	return r
}

// List returns all tool definitions in fixed enumeration order.
func (r *Registry) List() []Definition {
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Call dispatches a payload to the named tool. It fails with
// domain.ErrUnknownTool if the name is absent; the handler's own result
// (which may be a structured error) is returned uninterpreted.
func (r *Registry) Call(ctx context.Context, name string, payload json.RawMessage) (Result, error) {
	t, ok := r.tools[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", domain.ErrUnknownTool, name)
	}

	res := t.Invoke(ctx, payload)

	status := "success"
	if res.Failed() {
		status = "error"
	}
	metrics.ToolCallsTotal.WithLabelValues(name, status).Inc()

	return res, nil
}
