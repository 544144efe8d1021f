package agent

import (
	"context"
	"fmt"

	"github.com/cexll/agentsdk-go/pkg/api"
	"github.com/cexll/agentsdk-go/pkg/model"

	"github.com/taskpilotco/taskpilot/internal/config"
	"github.com/taskpilotco/taskpilot/internal/obs"
)

const runtimeSource = "runtime_agent"

const runtimeSystemPrompt = `You are a helpful task management assistant.
You can help users with the following operations:
1. Create tasks with title, description, priority (low/medium/high), and optional due date
2. List tasks, optionally filtered by status (pending/in_progress/completed)
3. Update task status or priority
4. Get task statistics
5. Create calendar events from tasks (if calendar integration is available)

When users make requests, analyze their intent and respond clearly and helpfully.`

// Runtime is the slice of the agent SDK runtime we use (mockable in tests).
type Runtime interface {
	Run(ctx context.Context, req api.Request) (*api.Response, error)
	Close()
}

type runtimeAdapter struct {
	rt *api.Runtime
}

func (r *runtimeAdapter) Run(ctx context.Context, req api.Request) (*api.Response, error) {
	return r.rt.Run(ctx, req)
}

func (r *runtimeAdapter) Close() {
	r.rt.Close()
}

// RuntimeFactory creates a Runtime instance.
type RuntimeFactory func(cfg *config.Config, sysPrompt string) (Runtime, error)

// DefaultRuntimeFactory creates the real agent SDK runtime.
func DefaultRuntimeFactory(cfg *config.Config, sysPrompt string) (Runtime, error) {
	var provider api.ModelFactory
	switch cfg.Provider.Type {
	case "openai":
		provider = &model.OpenAIProvider{
			APIKey:    cfg.Provider.APIKey,
			BaseURL:   cfg.Provider.BaseURL,
			ModelName: cfg.Agent.Model,
			MaxTokens: cfg.Agent.MaxTokens,
		}
	default: // "anthropic" or empty
		provider = &model.AnthropicProvider{
			APIKey:    cfg.Provider.APIKey,
			BaseURL:   cfg.Provider.BaseURL,
			ModelName: cfg.Agent.Model,
			MaxTokens: cfg.Agent.MaxTokens,
		}
	}

	rt, err := api.New(context.Background(), api.Options{
		ProjectRoot:  cfg.Agent.Workspace,
		ModelFactory: provider,
		SystemPrompt: sysPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("create runtime: %w", err)
	}
	return &runtimeAdapter{rt: rt}, nil
}

// RuntimeAgent delegates the whole request to the agent SDK runtime. No task
// tools are registered on the runtime, so this backend answers in free text
// only and never touches the task store. Use the pipeline backend for
// guaranteed task mutations.
type RuntimeAgent struct {
	rt   Runtime
	sink obs.Sink
}

func NewRuntimeAgent(rt Runtime, sink obs.Sink) *RuntimeAgent {
	if sink == nil {
		sink = obs.Nop{}
	}
	return &RuntimeAgent{rt: rt, sink: sink}
}

func (a *RuntimeAgent) Process(ctx context.Context, request string) (string, error) {
	a.sink.LogEvent("task_processing_started", runtimeSource, map[string]any{"request": request})

	resp, err := a.rt.Run(ctx, api.Request{
		Prompt:    request,
		SessionID: "taskpilot",
	})
	if err != nil {
		a.sink.LogEvent("task_processing_failed", runtimeSource, map[string]any{"error": err.Error()})
		return "", err
	}

	output := ""
	if resp != nil && resp.Result != nil {
		output = resp.Result.Output
	}

	a.sink.LogEvent("task_processing_completed", runtimeSource, map[string]any{
		"request": request,
		"success": true,
	})
	return output, nil
}

func (a *RuntimeAgent) Close() {
	if a.rt != nil {
		a.rt.Close()
	}
}
