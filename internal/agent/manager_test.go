package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cexll/agentsdk-go/pkg/api"

	"github.com/taskpilotco/taskpilot/internal/config"
	"github.com/taskpilotco/taskpilot/internal/task"
)

// mockRuntime returns a fixed response or error.
type mockRuntime struct {
	response *api.Response
	err      error
	closed   bool
	requests []api.Request
}

func (m *mockRuntime) Run(ctx context.Context, req api.Request) (*api.Response, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockRuntime) Close() { m.closed = true }

func testConfig(t *testing.T, agentType string) *config.Config {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cfg := config.DefaultConfig()
	cfg.Agent.Type = agentType
	cfg.Provider.APIKey = "sk-test"
	return cfg
}

func TestManager_MissingAPIKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Agent.Type = config.AgentTypePipeline
	sink := &recordSink{}

	_, err := NewWithOptions(cfg, Options{Sink: sink})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "API key not set") {
		t.Errorf("err = %v", err)
	}
	if !sink.has("task_manager_init_failed") {
		t.Error("expected task_manager_init_failed event")
	}
}

func TestManager_UnknownAgentType(t *testing.T) {
	cfg := testConfig(t, "hybrid")

	_, err := NewWithOptions(cfg, Options{Sink: &recordSink{}, Generator: &mockGen{}})
	if err == nil || !strings.Contains(err.Error(), "unknown agent type: hybrid") {
		t.Errorf("err = %v", err)
	}
}

func TestManager_PipelineProcess(t *testing.T) {
	cfg := testConfig(t, config.AgentTypePipeline)
	sink := &recordSink{}
	gen := &mockGen{responses: []string{"All your tasks, listed."}}

	mgr, err := NewWithOptions(cfg, Options{Sink: sink, Generator: gen})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	defer mgr.Close()

	if mgr.AgentType() != config.AgentTypePipeline {
		t.Errorf("agent type = %q", mgr.AgentType())
	}
	if !sink.has("task_manager_initialized") {
		t.Error("expected task_manager_initialized event")
	}

	out := mgr.Process(context.Background(), "list my tasks")
	if out != "All your tasks, listed." {
		t.Errorf("output = %q", out)
	}
	if !sink.has("task_processed") {
		t.Error("expected task_processed event")
	}
}

func TestManager_RuntimeProcess(t *testing.T) {
	cfg := testConfig(t, config.AgentTypeRuntime)
	rt := &mockRuntime{response: &api.Response{Result: &api.Result{Output: "Here is my answer."}}}
	factory := func(cfg *config.Config, sysPrompt string) (Runtime, error) {
		if sysPrompt == "" {
			t.Error("system prompt should not be empty")
		}
		return rt, nil
	}

	mgr, err := NewWithOptions(cfg, Options{Sink: &recordSink{}, RuntimeFactory: factory})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	out := mgr.Process(context.Background(), "what should I do today?")
	if out != "Here is my answer." {
		t.Errorf("output = %q", out)
	}
	if len(rt.requests) != 1 || rt.requests[0].Prompt != "what should I do today?" {
		t.Errorf("requests = %+v", rt.requests)
	}

	mgr.Close()
	if !rt.closed {
		t.Error("runtime should be closed with the manager")
	}
}

func TestManager_RuntimeFactoryError(t *testing.T) {
	cfg := testConfig(t, config.AgentTypeRuntime)
	sink := &recordSink{}
	factory := func(cfg *config.Config, sysPrompt string) (Runtime, error) {
		return nil, errors.New("sdk unavailable")
	}

	_, err := NewWithOptions(cfg, Options{Sink: sink, RuntimeFactory: factory})
	if err == nil || !strings.Contains(err.Error(), "create runtime agent") {
		t.Errorf("err = %v", err)
	}
	if !sink.has("task_manager_init_failed") {
		t.Error("expected task_manager_init_failed event")
	}
}

func TestManager_ProcessErrorBecomesString(t *testing.T) {
	cfg := testConfig(t, config.AgentTypeRuntime)
	sink := &recordSink{}
	rt := &mockRuntime{err: errors.New("connection reset")}
	factory := func(cfg *config.Config, sysPrompt string) (Runtime, error) { return rt, nil }

	mgr, err := NewWithOptions(cfg, Options{Sink: sink, RuntimeFactory: factory})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	defer mgr.Close()

	out := mgr.Process(context.Background(), "hello")
	if out != "Error processing request: connection reset" {
		t.Errorf("output = %q", out)
	}
	if !sink.has("task_processing_error") {
		t.Error("expected task_processing_error event")
	}
}

func TestManager_RuntimeNilResult(t *testing.T) {
	cfg := testConfig(t, config.AgentTypeRuntime)
	rt := &mockRuntime{response: &api.Response{Result: nil}}
	factory := func(cfg *config.Config, sysPrompt string) (Runtime, error) { return rt, nil }

	mgr, err := NewWithOptions(cfg, Options{Sink: &recordSink{}, RuntimeFactory: factory})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	defer mgr.Close()

	if out := mgr.Process(context.Background(), "hi"); out != "" {
		t.Errorf("output = %q, want empty", out)
	}
}

func TestManager_SharesStore(t *testing.T) {
	cfg := testConfig(t, config.AgentTypePipeline)
	store := task.NewStore(nil)
	store.Create("pre-existing", "", task.PriorityLow, "")

	mgr, err := NewWithOptions(cfg, Options{
		Sink:      &recordSink{},
		Generator: &mockGen{responses: []string{"ok"}},
		Store:     store,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	defer mgr.Close()

	if mgr.Store() != store {
		t.Error("manager should expose the injected store")
	}
	mgr.Process(context.Background(), "create a task called follow-up")
	if got := len(store.List("")); got != 2 {
		t.Errorf("store has %d tasks, want 2", got)
	}
}
