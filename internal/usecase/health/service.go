// Package health aggregates component availability into a single report
// served by the health endpoint and the health_check tool.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all required components are operational.
	Healthy Status = "ok"
	// Degraded indicates at least one required component is failing.
	Degraded Status = "degraded"
)

// Check is an individual component outcome. Detail carries the failure
// reason or a non-failing qualifier such as "not_configured".
type Check struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

const (
	checkOK            = "ok"
	checkError         = "error"
	checkNotConfigured = "not_configured"
)

// Report aggregates health check results.
type Report struct {
	Status Status           `json:"status"`
	Checks map[string]Check `json:"checks"`
}

// Service coordinates health checks across the vector store and the
// model providers.
type Service struct {
	store     StorePinger
	embedding EmbeddingChecker
	chat      ChatReadiness
}

// New creates a Service. embedding and chat may be nil.
func New(store StorePinger, embedding EmbeddingChecker, chat ChatReadiness) *Service {
	return &Service{store: store, embedding: embedding, chat: chat}
}

// Check runs health checks against all components. An unconfigured chat
// model is reported but does not degrade the overall status: retrieval
// and storage still work without it.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]Check)

	if err := s.store.Ping(ctx); err != nil {
		checks["vector_store"] = Check{Status: checkError, Detail: err.Error()}
	} else {
		checks["vector_store"] = Check{Status: checkOK}
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = Check{Status: checkError, Detail: err.Error()}
		} else {
			checks["embedding"] = Check{Status: checkOK}
		}
	}

	if s.chat != nil {
		if s.chat.Configured() {
			checks["chat"] = Check{Status: checkOK}
		} else {
			checks["chat"] = Check{Status: checkNotConfigured}
		}
	}

	status := Healthy
	for _, c := range checks {
		if c.Status == checkError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
