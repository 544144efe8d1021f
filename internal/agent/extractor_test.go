package agent

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

// mockGen returns canned responses in order, or a fixed error.
type mockGen struct {
	responses []string
	err       error

	mu      sync.Mutex
	prompts []string
}

func (m *mockGen) Generate(prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "", nil
	}
	out := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return out, nil
}

type recordSink struct {
	mu     sync.Mutex
	events []string
}

func (r *recordSink) LogEvent(event, source string, data map[string]any) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recordSink) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

func TestExtractor_Extract(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     Params
	}{
		{
			name:     "plain JSON",
			response: `{"title": "Buy milk", "priority": "high"}`,
			want:     Params{Title: "Buy milk", Priority: "high"},
		},
		{
			name:     "fenced JSON",
			response: "```json\n{\"title\": \"Report\", \"due_date\": \"2026-09-15\"}\n```",
			want:     Params{Title: "Report", DueDate: "2026-09-15"},
		},
		{
			name:     "bare fence",
			response: "```\n{\"task_id\": 3, \"status\": \"completed\"}\n```",
			want:     Params{TaskID: 3, Status: "completed"},
		},
		{
			name:     "JSON embedded in prose",
			response: `Sure! Here's the extraction: {"title": "Call mom"} Hope that helps.`,
			want:     Params{Title: "Call mom"},
		},
		{
			name:     "task id as string",
			response: `{"task_id": "7", "status": "in_progress"}`,
			want:     Params{TaskID: 7, Status: "in_progress"},
		},
		{
			name:     "null task id",
			response: `{"title": "x", "task_id": null}`,
			want:     Params{Title: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(&mockGen{responses: []string{tt.response}}, nil)
			got := e.Extract("whatever")
			if got != tt.want {
				t.Errorf("Extract() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtractor_Extract_FailuresYieldEmptyParams(t *testing.T) {
	tests := []struct {
		name string
		gen  *mockGen
	}{
		{"generation error", &mockGen{err: errors.New("model down")}},
		{"no JSON at all", &mockGen{responses: []string{"I could not parse that request"}}},
		{"broken JSON", &mockGen{responses: []string{`{"title": `}}},
		{"invalid task id", &mockGen{responses: []string{`{"task_id": "seven"}`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordSink{}
			e := NewExtractor(tt.gen, sink)
			got := e.Extract("update task seven")
			if got != (Params{}) {
				t.Errorf("Extract() = %+v, want empty Params", got)
			}
			if !sink.has("task_info_extraction_failed") {
				t.Error("expected task_info_extraction_failed event")
			}
		})
	}
}

func TestExtractor_PromptContainsRequest(t *testing.T) {
	gen := &mockGen{responses: []string{`{}`}}
	NewExtractor(gen, nil).Extract("create a task: water plants")

	if len(gen.prompts) != 1 {
		t.Fatalf("generate called %d times, want 1", len(gen.prompts))
	}
	if want := `"create a task: water plants"`; !strings.Contains(gen.prompts[0], want) {
		t.Errorf("prompt missing quoted request: %q", gen.prompts[0])
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"  ```json\n{}\n```  ", "{}"},
	}
	for _, tt := range tests {
		if got := stripCodeFences(tt.in); got != tt.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
