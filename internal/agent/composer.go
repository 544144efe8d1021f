package agent

import (
	"fmt"
	"strings"

	"github.com/taskpilotco/taskpilot/internal/llm"
	"github.com/taskpilotco/taskpilot/internal/obs"
)

const responsePrompt = `Based on the task management operation result below, provide a friendly, natural response to the user.

Operation Result:
%s

User's Original Request:
%s

Provide a concise, helpful response that acknowledges what was done.`

// Composer rephrases a dispatch result into conversational prose. If the
// model call fails the raw result is returned unchanged, so a completed
// operation is never reported as an error.
type Composer struct {
	gen  llm.Generator
	sink obs.Sink
}

func NewComposer(gen llm.Generator, sink obs.Sink) *Composer {
	if sink == nil {
		sink = obs.Nop{}
	}
	return &Composer{gen: gen, sink: sink}
}

func (c *Composer) Compose(result, request string) string {
	out, err := c.gen.Generate(fmt.Sprintf(responsePrompt, result, request))
	if err != nil || strings.TrimSpace(out) == "" {
		if err != nil {
			c.sink.LogEvent("response_generation_failed", pipelineSource, map[string]any{"error": err.Error()})
		}
		return result
	}
	return out
}
