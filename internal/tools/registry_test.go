package tools

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

type staticTool struct {
	name string
	res  Result
}

func (s staticTool) Definition() Definition {
	return Definition{Name: s.name, Description: "static test tool"}
}

func (s staticTool) Invoke(context.Context, json.RawMessage) Result { return s.res }

func TestRegistry_ListPreservesOrder(t *testing.T) {
	r := NewRegistry(
		staticTool{name: "alpha"},
		staticTool{name: "beta"},
		staticTool{name: "gamma"},
	)

	first := r.List()
	names := make([]string, 0, len(first))
	for _, d := range first {
		names = append(names, d.Name)
	}
	if !reflect.DeepEqual(names, []string{"alpha", "beta", "gamma"}) {
		t.Errorf("unexpected order: %v", names)
	}

	second := r.List()
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated List calls must return identical definitions")
	}
}

func TestRegistry_CallDispatches(t *testing.T) {
	r := NewRegistry(staticTool{name: "alpha", res: OK("payload")})

	res, err := r.Call(context.Background(), "alpha", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Data != "payload" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestRegistry_CallUnknownTool(t *testing.T) {
	r := NewRegistry(staticTool{name: "alpha"})

	_, err := r.Call(context.Background(), "nope", nil)
	if !errors.Is(err, domain.ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestRegistry_HandlerErrorStaysInBand(t *testing.T) {
	r := NewRegistry(staticTool{name: "alpha", res: Errf("boom")})

	res, err := r.Call(context.Background(), "alpha", nil)
	if err != nil {
		t.Fatalf("handler errors must not become dispatch errors: %v", err)
	}
	if !res.Failed() || res.Err != "boom" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestRegistry_DuplicateNamePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate tool name")
		}
	}()
	NewRegistry(staticTool{name: "alpha"}, staticTool{name: "alpha"})
}

func TestResult_MarshalJSON(t *testing.T) {
	ok, err := json.Marshal(OK(map[string]string{"status": "ok"}))
	if err != nil {
		t.Fatal(err)
	}
	if string(ok) != `{"status":"ok"}` {
		t.Errorf("unexpected success encoding: %s", ok)
	}

	fail, err := json.Marshal(Errf("it broke"))
	if err != nil {
		t.Fatal(err)
	}
	if string(fail) != `{"error":"it broke"}` {
		t.Errorf("unexpected error encoding: %s", fail)
	}
}
