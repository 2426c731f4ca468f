package ragdex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	agentpkg "github.com/kailas-cloud/ragdex/internal/agent"
	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/tools"
	healthuc "github.com/kailas-cloud/ragdex/internal/usecase/health"
)

// --- Mocks ---

type mockRegistry struct {
	defs     []tools.Definition
	res      tools.Result
	err      error
	lastTool string
	lastRaw  json.RawMessage
}

func (m *mockRegistry) List() []tools.Definition { return m.defs }

func (m *mockRegistry) Call(_ context.Context, name string, payload json.RawMessage) (tools.Result, error) {
	m.lastTool = name
	m.lastRaw = payload
	if m.err != nil {
		return tools.Result{}, m.err
	}
	return m.res, nil
}

type mockAgent struct {
	resp agentpkg.Response
	last string
}

func (m *mockAgent) Run(_ context.Context, message string) agentpkg.Response {
	m.last = message
	return m.resp
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

// --- Tests ---

func TestTools(t *testing.T) {
	c := &Client{registry: &mockRegistry{defs: []tools.Definition{
		{Name: "health_check", Description: "liveness"},
		{Name: "rag_answer", Description: "grounded answers"},
	}}}

	infos := c.Tools()
	if len(infos) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(infos))
	}
	if infos[0].Name != "health_check" || infos[1].Name != "rag_answer" {
		t.Errorf("unexpected order: %+v", infos)
	}
}

func TestCallTool_Success(t *testing.T) {
	reg := &mockRegistry{res: tools.OK(map[string]string{"status": "ok"})}
	c := &Client{registry: reg}

	out, err := c.CallTool(context.Background(), "health_check", map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != `{"status":"ok"}` {
		t.Errorf("unexpected result: %s", out)
	}
	if reg.lastTool != "health_check" {
		t.Errorf("unexpected tool: %q", reg.lastTool)
	}
}

func TestCallTool_NilPayloadBecomesEmptyObject(t *testing.T) {
	reg := &mockRegistry{res: tools.OK(map[string]string{"status": "ok"})}
	c := &Client{registry: reg}

	if _, err := c.CallTool(context.Background(), "health_check", nil); err != nil {
		t.Fatal(err)
	}
	if string(reg.lastRaw) != "{}" {
		t.Errorf("expected empty object payload, got %s", reg.lastRaw)
	}
}

func TestCallTool_HandlerErrorInBand(t *testing.T) {
	reg := &mockRegistry{res: tools.Errf("text cannot be empty")}
	c := &Client{registry: reg}

	out, err := c.CallTool(context.Background(), "embed_text", map[string]any{"text": ""})
	if err != nil {
		t.Fatalf("handler errors must not become Go errors: %v", err)
	}
	if string(out) != `{"error":"text cannot be empty"}` {
		t.Errorf("unexpected result: %s", out)
	}
}

func TestCallTool_UnknownTool(t *testing.T) {
	reg := &mockRegistry{err: fmt.Errorf("%w: nope", domain.ErrUnknownTool)}
	c := &Client{registry: reg}

	_, err := c.CallTool(context.Background(), "nope", nil)
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestAsk(t *testing.T) {
	res := tools.OK(tools.UpsertOutput{Status: "success"})
	ag := &mockAgent{resp: agentpkg.Response{
		Reply: "Stored in vector database.",
		ActionsTaken: []agentpkg.Action{
			{Tool: "upsert_document", Result: &res},
		},
	}}
	c := &Client{agent: ag}

	reply, err := c.Ask(context.Background(), "store: the sky is blue")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Reply != "Stored in vector database." {
		t.Errorf("unexpected reply: %q", reply.Reply)
	}
	if len(reply.Actions) != 1 || reply.Actions[0].Tool != "upsert_document" {
		t.Fatalf("unexpected actions: %+v", reply.Actions)
	}
	if len(reply.Actions[0].Result) == 0 {
		t.Error("expected marshaled tool result in the action trail")
	}
}

func TestAsk_EmptyMessage(t *testing.T) {
	c := &Client{agent: &mockAgent{}}

	if _, err := c.Ask(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty message")
	}
}

func TestHealth(t *testing.T) {
	c := &Client{health: &mockHealth{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.Check{
			"vector_store": {Status: "error", Detail: "conn refused"},
			"chat":         {Status: "not_configured"},
		},
	}}}

	hs := c.Health(context.Background())
	if hs.Status != "degraded" {
		t.Errorf("unexpected status: %q", hs.Status)
	}
	if hs.Checks["vector_store"] != "error" || hs.Checks["chat"] != "not_configured" {
		t.Errorf("unexpected checks: %v", hs.Checks)
	}
}

func TestNew_RequiresAddress(t *testing.T) {
	if _, err := New(context.Background()); err == nil {
		t.Fatal("expected error without a redis address")
	}
}
