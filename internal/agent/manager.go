package agent

import (
	"context"
	"fmt"

	"github.com/taskpilotco/taskpilot/internal/calendar"
	"github.com/taskpilotco/taskpilot/internal/config"
	"github.com/taskpilotco/taskpilot/internal/llm"
	"github.com/taskpilotco/taskpilot/internal/obs"
	"github.com/taskpilotco/taskpilot/internal/task"
)

const managerSource = "task_manager"

// Agent is the contract both backends satisfy: raw text in, answer out.
type Agent interface {
	Process(ctx context.Context, request string) (string, error)
	Close()
}

// Manager wires one backend to a shared task store and observability sink,
// and guarantees the caller always gets a string back.
type Manager struct {
	agentType string
	agent     Agent
	store     *task.Store
	sink      obs.Sink
}

// Options allow injecting collaborators for testing.
type Options struct {
	Generator      llm.Generator
	RuntimeFactory RuntimeFactory
	Calendar       calendar.Service
	Sink           obs.Sink
	Store          *task.Store
}

func New(cfg *config.Config) (*Manager, error) {
	return NewWithOptions(cfg, Options{})
}

func NewWithOptions(cfg *config.Config, opts Options) (*Manager, error) {
	sink := opts.Sink
	if sink == nil {
		sink = obs.NewLangfuseSink(cfg.Langfuse.PublicKey, cfg.Langfuse.SecretKey, cfg.Langfuse.Host)
	}

	// Missing credentials are a hard startup failure: there is no degraded
	// mode for agent initialization.
	if cfg.Provider.APIKey == "" {
		err := fmt.Errorf("API key not set. Run 'taskpilot onboard' or set TASKPILOT_API_KEY / ANTHROPIC_API_KEY")
		sink.LogEvent("task_manager_init_failed", managerSource, map[string]any{
			"agent_type": cfg.Agent.Type,
			"error":      err.Error(),
		})
		return nil, err
	}

	store := opts.Store
	if store == nil {
		store = task.NewStore(sink)
	}

	cal := opts.Calendar
	if cal == nil {
		cal = calendar.New(context.Background(), cfg.Calendar, sink)
	}

	gen := opts.Generator
	if gen == nil {
		gen = llm.NewClient(cfg)
	}

	m := &Manager{agentType: cfg.Agent.Type, store: store, sink: sink}

	switch cfg.Agent.Type {
	case config.AgentTypePipeline:
		m.agent = NewPipelineAgent(store, gen, cal, sink)
	case config.AgentTypeRuntime:
		factory := opts.RuntimeFactory
		if factory == nil {
			factory = DefaultRuntimeFactory
		}
		rt, err := factory(cfg, runtimeSystemPrompt)
		if err != nil {
			sink.LogEvent("task_manager_init_failed", managerSource, map[string]any{
				"agent_type": cfg.Agent.Type,
				"error":      err.Error(),
			})
			return nil, fmt.Errorf("create runtime agent: %w", err)
		}
		m.agent = NewRuntimeAgent(rt, sink)
	default:
		return nil, fmt.Errorf("unknown agent type: %s", cfg.Agent.Type)
	}

	sink.LogEvent("task_manager_initialized", managerSource, map[string]any{"agent_type": cfg.Agent.Type})
	return m, nil
}

// Process runs one request through the configured backend. It never returns
// an error or panics to the caller; failures come back as an error string.
func (m *Manager) Process(ctx context.Context, request string) string {
	result, err := m.agent.Process(ctx, request)
	if err != nil {
		m.sink.LogEvent("task_processing_error", managerSource, map[string]any{
			"agent_type": m.agentType,
			"error":      err.Error(),
		})
		return fmt.Sprintf("Error processing request: %v", err)
	}

	m.sink.LogEvent("task_processed", managerSource, map[string]any{
		"agent_type": m.agentType,
		"request":    request,
		"success":    true,
	})
	return result
}

// AgentType reports which backend this manager runs.
func (m *Manager) AgentType() string { return m.agentType }

// Store exposes the shared task store for collaborators such as the reminder
// scheduler.
func (m *Manager) Store() *task.Store { return m.store }

func (m *Manager) Close() {
	if m.agent != nil {
		m.agent.Close()
	}
	if f, ok := m.sink.(interface{ Flush() }); ok {
		f.Flush()
	}
}
