// Package agent implements a minimal routing loop over the tool registry:
// each inbound message is classified as a storage request or a question and
// dispatched to the matching tool.
package agent

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/metrics"
	"github.com/kailas-cloud/ragdex/internal/tools"
)

// Intent is the resolved purpose of an agent message.
type Intent string

const (
	IntentStore Intent = "store"
	IntentQA    Intent = "qa"
)

const (
	classifierSystemPrompt = "Classify the user's intent. Respond with 'store' if they want to save knowledge, otherwise respond with 'qa'. Reply with a single word: store or qa."
	classifierMaxTokens    = 5

	// fallbackReply is the terminal reply when the workflow itself fails.
	fallbackReply = "I don't have enough context to answer."

	qaTopK = 5
)

// ToolCaller dispatches a payload to a named tool.
type ToolCaller interface {
	Call(ctx context.Context, name string, payload json.RawMessage) (tools.Result, error)
}

// Action records one step the agent took, mirroring the tool call that
// backed it. An action with only Error set marks a workflow failure.
type Action struct {
	Tool    string         `json:"tool,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
	Result  *tools.Result  `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Response is the agent's reply plus the audit trail of tool calls.
type Response struct {
	Reply        string   `json:"reply"`
	ActionsTaken []Action `json:"actions_taken"`
}

// Router classifies messages and drives the store / question-answering
// workflows through the tool registry.
type Router struct {
	tools    ToolCaller
	classify domain.ChatCompleter
	log      *zap.Logger
	newID    func() string
}

// NewRouter creates an agent router. classify may be nil when no chat
// model is configured; classification then falls back to prefix rules.
func NewRouter(tc ToolCaller, classify domain.ChatCompleter, log *zap.Logger) *Router {
	return &Router{
		tools:    tc,
		classify: classify,
		log:      log,
		newID:    shortID,
	}
}

// Run handles one agent message end to end. It never returns an error:
// workflow failures degrade to the fallback reply with the failure
// recorded in the action trail.
func (r *Router) Run(ctx context.Context, message string) Response {
	message = strings.TrimSpace(message)

	actions := make([]Action, 0, 1)
	reply := r.dispatch(ctx, message, &actions)

	return Response{Reply: reply, ActionsTaken: actions}
}

func (r *Router) dispatch(ctx context.Context, message string, actions *[]Action) (reply string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("agent workflow panicked", zap.Any("panic", rec))
			*actions = append(*actions, Action{Error: fmt.Sprint(rec)})
			reply = fallbackReply
		}
	}()

	intent := r.classifyIntent(ctx, message)
	metrics.AgentIntentsTotal.WithLabelValues(string(intent)).Inc()
	r.log.Info("agent intent resolved", zap.String("intent", string(intent)))

	var err error
	if intent == IntentStore {
		reply, err = r.runStore(ctx, message, actions)
	} else {
		reply, err = r.runQA(ctx, message, actions)
	}
	if err != nil {
		r.log.Error("agent workflow failed", zap.Error(err))
		*actions = append(*actions, Action{Error: err.Error()})
		reply = fallbackReply
	}
	return reply
}

// classifyIntent resolves the message intent: explicit store:/save: prefixes
// win, then a one-shot LLM verdict, and anything unclear fails open to qa.
func (r *Router) classifyIntent(ctx context.Context, message string) Intent {
	lowered := strings.ToLower(message)
	if strings.HasPrefix(lowered, "store:") || strings.HasPrefix(lowered, "save:") {
		return IntentStore
	}

	if r.classify == nil {
		r.log.Warn("intent classifier is not configured, defaulting to qa")
		return IntentQA
	}

	verdict, err := r.classify.Complete(ctx, domain.ChatRequest{
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: classifierSystemPrompt},
			{Role: domain.RoleUser, Content: message},
		},
		Temperature: 0,
		MaxTokens:   classifierMaxTokens,
	})
	if err != nil {
		r.log.Warn("intent classification failed, defaulting to qa", zap.Error(err))
		return IntentQA
	}

	if strings.Contains(strings.ToLower(strings.TrimSpace(verdict)), "store") {
		return IntentStore
	}
	return IntentQA
}

func (r *Router) runStore(ctx context.Context, message string, actions *[]Action) (string, error) {
	// Strip the leading directive; keep the whole message if nothing follows.
	content := message
	if _, after, found := strings.Cut(message, ":"); found {
		if trimmed := strings.TrimSpace(after); trimmed != "" {
			content = trimmed
		}
	}

	payload := map[string]any{
		"id":   "agent-" + r.newID(),
		"text": content,
		"metadata": map[string]any{
			"source": "agent",
			"origin": "agent_workflow",
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode upsert payload: %w", err)
	}

	res, err := r.tools.Call(ctx, "upsert_document", raw)
	if err != nil {
		return "", fmt.Errorf("call upsert_document: %w", err)
	}
	*actions = append(*actions, Action{Tool: "upsert_document", Payload: payload, Result: &res})

	if res.Failed() {
		return "Failed to store: " + res.Err, nil
	}
	return "Stored in vector database.", nil
}

func (r *Router) runQA(ctx context.Context, message string, actions *[]Action) (string, error) {
	payload := map[string]any{"query": message, "top_k": qaTopK}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode rag payload: %w", err)
	}

	res, err := r.tools.Call(ctx, "rag_answer", raw)
	if err != nil {
		return "", fmt.Errorf("call rag_answer: %w", err)
	}
	*actions = append(*actions, Action{Tool: "rag_answer", Payload: payload, Result: &res})

	if res.Failed() {
		return "Unable to answer: " + res.Err, nil
	}

	out, ok := res.Data.(tools.RagOutput)
	if !ok || strings.TrimSpace(out.Answer) == "" {
		return fallbackReply, nil
	}
	return out.Answer, nil
}

func shortID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])[:8]
}
