// Package chi exposes the tool registry and the agent over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/agent"
	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/tools"
	healthuc "github.com/kailas-cloud/ragdex/internal/usecase/health"
)

// toolRegistry lists and dispatches tools.
type toolRegistry interface {
	List() []tools.Definition
	Call(ctx context.Context, name string, payload json.RawMessage) (tools.Result, error)
}

// agentRunner handles one agent message.
type agentRunner interface {
	Run(ctx context.Context, message string) agent.Response
}

// healthChecker aggregates component health.
type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server is the HTTP API server.
type Server struct {
	registry toolRegistry
	agent    agentRunner
	health   healthChecker
	logger   *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(registry toolRegistry, agentRouter agentRunner, health healthChecker, logger *zap.Logger) *Server {
	return &Server{
		registry: registry,
		agent:    agentRouter,
		health:   health,
		logger:   logger,
	}
}

// Register mounts all routes on the given router.
func (s *Server) Register(r chi.Router) {
	r.Get("/tools", s.ListTools)
	r.Post("/tool-call", s.ToolCall)
	r.Post("/agent", s.Agent)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ListTools handles GET /tools.
func (s *Server) ListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tools": s.registry.List(),
	})
}

// ToolCall handles POST /tool-call. The tool's own result is returned
// uninterpreted: handler failures arrive as a structured {error} payload
// with HTTP 200, only dispatch failures map to HTTP errors.
func (s *Server) ToolCall(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ToolName string          `json:"tool_name"`
		Payload  json.RawMessage `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.ToolName == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "tool_name is required")
		return
	}
	if len(req.Payload) == 0 {
		req.Payload = json.RawMessage(`{}`)
	}

	result, err := s.registry.Call(r.Context(), req.ToolName, req.Payload)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownTool) {
			writeError(w, http.StatusBadRequest, "unknown_tool", err.Error())
			return
		}
		s.logger.Error("tool dispatch failed", zap.String("tool", req.ToolName), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tool_name": req.ToolName,
		"result":    result,
	})
}

// Agent handles POST /agent.
func (s *Server) Agent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "message cannot be empty")
		return
	}

	writeJSON(w, http.StatusOK, s.agent.Run(r.Context(), req.Message))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
