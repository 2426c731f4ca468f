package tools

import (
	"context"
	"encoding/json"
)

// HealthCheck reports that the tool server is running.
type HealthCheck struct{}

// NewHealthCheck creates the health_check tool.
func NewHealthCheck() *HealthCheck { return &HealthCheck{} }

// HealthOutput is the health_check tool payload.
type HealthOutput struct {
	Status string `json:"status"`
}

// Definition implements Tool.
func (t *HealthCheck) Definition() Definition {
	return Definition{
		Name:         "health_check",
		Description:  "Check if the tool server is running",
		InputSchema:  objectSchema(map[string]any{}),
		OutputSchema: objectSchema(map[string]any{
			"status": map[string]any{"type": "string"},
		}),
	}
}

// Invoke implements Tool.
func (t *HealthCheck) Invoke(_ context.Context, _ json.RawMessage) Result {
	return OK(HealthOutput{Status: "ok"})
}
