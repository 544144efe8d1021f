package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/taskpilotco/taskpilot/internal/llm"
	"github.com/taskpilotco/taskpilot/internal/obs"
)

const extractionPrompt = `Extract task information from the following user request: "%s"

Return a JSON object with the following fields if available:
- title: The task title
- description: The task description
- priority: low, medium, or high (default: medium)
- due_date: Due date in YYYY-MM-DD format if mentioned
- task_id: Task ID if mentioned (for updates/deletes)
- status: pending, in_progress, or completed (for updates)

Only include fields that are mentioned in the request. Return only valid JSON.`

// Extractor asks the model for structured task fields. It never fails the
// caller: any generation or parse failure yields empty Params.
type Extractor struct {
	gen  llm.Generator
	sink obs.Sink
}

func NewExtractor(gen llm.Generator, sink obs.Sink) *Extractor {
	if sink == nil {
		sink = obs.Nop{}
	}
	return &Extractor{gen: gen, sink: sink}
}

func (e *Extractor) Extract(request string) Params {
	out, err := e.gen.Generate(fmt.Sprintf(extractionPrompt, request))
	if err != nil {
		e.sink.LogEvent("task_info_extraction_failed", pipelineSource, map[string]any{"error": err.Error()})
		return Params{}
	}

	raw, err := extractJSON(out)
	if err != nil {
		e.sink.LogEvent("task_info_extraction_failed", pipelineSource, map[string]any{"error": err.Error()})
		return Params{}
	}

	var p Params
	if err := json.Unmarshal(raw, &p); err != nil {
		e.sink.LogEvent("task_info_extraction_failed", pipelineSource, map[string]any{"error": err.Error()})
		return Params{}
	}
	return p
}

// extractJSON pulls a JSON object out of potentially noisy model output.
func extractJSON(s string) ([]byte, error) {
	s = stripCodeFences(s)

	if json.Valid([]byte(s)) {
		return []byte(s), nil
	}

	// Fall back to the outermost object boundaries.
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || start >= end {
		return nil, errors.New("no JSON object found in response")
	}
	extracted := s[start : end+1]
	if !json.Valid([]byte(extracted)) {
		return nil, errors.New("extracted content is not valid JSON")
	}
	return []byte(extracted), nil
}

// stripCodeFences removes a wrapping markdown code block (```json or ```).
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if cut, found := strings.CutPrefix(s, "```json"); found {
		s = cut
	} else if cut, found := strings.CutPrefix(s, "```"); found {
		s = cut
	}
	if cut, found := strings.CutSuffix(s, "```"); found {
		s = cut
	}
	return strings.TrimSpace(s)
}
