package ragdex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	agentpkg "github.com/kailas-cloud/ragdex/internal/agent"
	"github.com/kailas-cloud/ragdex/internal/db"
	dbRedis "github.com/kailas-cloud/ragdex/internal/db/redis"
	"github.com/kailas-cloud/ragdex/internal/domain"
	vectorrepo "github.com/kailas-cloud/ragdex/internal/repository/vector"
	"github.com/kailas-cloud/ragdex/internal/tools"
	openaiTransport "github.com/kailas-cloud/ragdex/internal/transport/openai"
	healthuc "github.com/kailas-cloud/ragdex/internal/usecase/health"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces for test substitution.
type toolRegistry interface {
	List() []tools.Definition
	Call(ctx context.Context, name string, payload json.RawMessage) (tools.Result, error)
}

type agentRunner interface {
	Run(ctx context.Context, message string) agentpkg.Response
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the ragdex SDK entry point.
type Client struct {
	store    db.Store
	registry toolRegistry
	agent    agentRunner
	health   healthUseCase
}

// New creates a ragdex Client and connects to Redis.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		readinessTimeout: defaultReadinessTimeout,
		logger:           zap.NewNop(),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("ragdex: redis address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("ragdex: create store: %w", err)
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("ragdex: redis not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	var embedder domain.Embedder
	if cfg.embedder != nil {
		embedder = domainEmbedder{inner: cfg.embedder}
	} else {
		embedder = openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
			APIKey:     cfg.openai.APIKey,
			BaseURL:    cfg.openai.BaseURL,
			Model:      cfg.openai.EmbeddingModel,
			Dimensions: cfg.openai.EmbeddingDimensions,
			Logger:     cfg.logger,
		})
	}

	chatClient := openaiTransport.NewChatClient(&openaiTransport.ChatConfig{
		APIKey:  cfg.openai.APIKey,
		BaseURL: cfg.openai.BaseURL,
		Model:   cfg.openai.ChatModel,
		Logger:  cfg.logger,
	})

	repo := vectorrepo.New(store, cfg.openai.EmbeddingDimensions)

	embedTool := tools.NewEmbedText(embedder)
	searchTool := tools.NewVectorSearch(embedTool, repo)
	ragTool := tools.NewRagAnswer(searchTool, chatClient).
		WithGeneration(cfg.chatTemperature, cfg.chatMaxTokens)

	registry := tools.NewRegistry(
		tools.NewHealthCheck(),
		embedTool,
		tools.NewUpsertDocument(embedTool, repo),
		searchTool,
		ragTool,
	)

	var classifier domain.ChatCompleter
	if chatClient.Configured() {
		classifier = chatClient
	}

	// A custom embedder may not support health probing.
	var embChecker healthuc.EmbeddingChecker
	if hc, ok := embedder.(healthuc.EmbeddingChecker); ok {
		embChecker = hc
	}

	return &Client{
		store:    store,
		registry: registry,
		agent:    agentpkg.NewRouter(registry, classifier, cfg.logger),
		health:   healthuc.New(store, embChecker, chatClient),
	}
}

// Close releases the underlying Redis connection.
func (c *Client) Close() {
	c.store.Close()
}

// ToolInfo describes one registered tool.
type ToolInfo struct {
	Name         string
	Description  string
	InputSchema  map[string]any
	OutputSchema map[string]any
}

// Tools lists all registered tools in fixed enumeration order.
func (c *Client) Tools() []ToolInfo {
	defs := c.registry.List()
	infos := make([]ToolInfo, len(defs))
	for i, d := range defs {
		infos[i] = ToolInfo{
			Name:         d.Name,
			Description:  d.Description,
			InputSchema:  d.InputSchema,
			OutputSchema: d.OutputSchema,
		}
	}
	return infos
}

// CallTool dispatches a payload to the named tool and returns the raw JSON
// result. Handler failures come back in-band as {"error": "..."}; only an
// unknown tool name or an encoding problem yields a Go error.
func (c *Client) CallTool(ctx context.Context, name string, payload any) (json.RawMessage, error) {
	raw := json.RawMessage(`{}`)
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("ragdex: encode payload: %w", err)
		}
		raw = b
	}

	res, err := c.registry.Call(ctx, name, raw)
	if err != nil {
		return nil, fmt.Errorf("ragdex: %w", err)
	}

	out, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("ragdex: encode result: %w", err)
	}
	return out, nil
}

// AgentAction records one step the agent took.
type AgentAction struct {
	Tool   string
	Result json.RawMessage
	Error  string
}

// AgentReply is the agent's answer plus the audit trail of tool calls.
type AgentReply struct {
	Reply   string
	Actions []AgentAction
}

// Ask routes one message through the agent: store:/save: prefixed
// messages are persisted, everything else is answered over the stored
// documents.
func (c *Client) Ask(ctx context.Context, message string) (AgentReply, error) {
	if strings.TrimSpace(message) == "" {
		return AgentReply{}, errors.New("ragdex: message cannot be empty")
	}

	resp := c.agent.Run(ctx, message)

	actions := make([]AgentAction, len(resp.ActionsTaken))
	for i, a := range resp.ActionsTaken {
		action := AgentAction{Tool: a.Tool, Error: a.Error}
		if a.Result != nil {
			if raw, err := json.Marshal(a.Result); err == nil {
				action.Result = raw
			}
		}
		actions[i] = action
	}

	return AgentReply{Reply: resp.Reply, Actions: actions}, nil
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // component -> "ok"/"error"/"not_configured"
}

// Health checks the health of all wired components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.health.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = v.Status
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}
