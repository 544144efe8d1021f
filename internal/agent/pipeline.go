package agent

import (
	"context"

	"github.com/taskpilotco/taskpilot/internal/calendar"
	"github.com/taskpilotco/taskpilot/internal/llm"
	"github.com/taskpilotco/taskpilot/internal/obs"
	"github.com/taskpilotco/taskpilot/internal/task"
)

const pipelineSource = "pipeline_agent"

// PipelineAgent is the explicit backend: classify the request, extract
// parameters when the action needs them, execute against the store, then
// rephrase the result. It never returns an error; every failure inside the
// pipeline degrades to a user-readable string.
type PipelineAgent struct {
	extractor  *Extractor
	dispatcher *Dispatcher
	composer   *Composer
	sink       obs.Sink
}

func NewPipelineAgent(store *task.Store, gen llm.Generator, cal calendar.Service, sink obs.Sink) *PipelineAgent {
	if sink == nil {
		sink = obs.Nop{}
	}
	return &PipelineAgent{
		extractor:  NewExtractor(gen, sink),
		dispatcher: NewDispatcher(store, cal, sink),
		composer:   NewComposer(gen, sink),
		sink:       sink,
	}
}

func (a *PipelineAgent) Process(ctx context.Context, request string) (string, error) {
	a.sink.LogEvent("task_processing_started", pipelineSource, map[string]any{"request": request})

	action := Classify(request)

	var params Params
	if needsParams(action) {
		params = a.extractor.Extract(request)
	}

	result := a.dispatcher.Execute(action, params)
	final := a.composer.Compose(result, request)

	a.sink.LogEvent("task_processing_completed", pipelineSource, map[string]any{
		"request": request,
		"action":  string(action),
		"success": true,
	})
	return final, nil
}

func (a *PipelineAgent) Close() {}
