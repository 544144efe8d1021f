package obs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestNewLangfuseSink_MissingKeysReturnsNop(t *testing.T) {
	tests := []struct {
		name      string
		publicKey string
		secretKey string
	}{
		{"both empty", "", ""},
		{"no secret", "pk-x", ""},
		{"no public", "", "sk-x"},
		{"whitespace keys", "  ", "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewLangfuseSink(tt.publicKey, tt.secretKey, "https://example.com")
			if _, ok := s.(Nop); !ok {
				t.Errorf("got %T, want Nop", s)
			}
		})
	}
}

func TestLangfuseSink_PostsEvent(t *testing.T) {
	type received struct {
		path string
		user string
		pass string
		body map[string]any
	}
	var mu sync.Mutex
	var got []received

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ := r.BasicAuth()
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		got = append(got, received{path: r.URL.Path, user: user, pass: pass, body: body})
		mu.Unlock()
		w.WriteHeader(http.StatusMultiStatus)
	}))
	defer server.Close()

	s := NewLangfuseSink("pk-test", "sk-test", server.URL)
	s.LogEvent("task_created", "task_store", map[string]any{"task_id": 1})

	lf, ok := s.(*LangfuseSink)
	if !ok {
		t.Fatalf("got %T, want *LangfuseSink", s)
	}
	lf.Flush()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("received %d requests, want 1", len(got))
	}
	r := got[0]
	if r.path != "/api/public/ingestion" {
		t.Errorf("path = %q", r.path)
	}
	if r.user != "pk-test" || r.pass != "sk-test" {
		t.Errorf("basic auth = %q / %q", r.user, r.pass)
	}

	batch, _ := r.body["batch"].([]any)
	if len(batch) != 1 {
		t.Fatalf("batch = %v", r.body["batch"])
	}
	item, _ := batch[0].(map[string]any)
	if item["type"] != "event-create" {
		t.Errorf("item type = %v", item["type"])
	}
	body, _ := item["body"].(map[string]any)
	if body["name"] != "task_created" {
		t.Errorf("event name = %v", body["name"])
	}
	metadata, _ := body["metadata"].(map[string]any)
	if metadata["agent"] != "task_store" {
		t.Errorf("metadata agent = %v", metadata["agent"])
	}
	if metadata["task_id"] != float64(1) {
		t.Errorf("metadata task_id = %v", metadata["task_id"])
	}
}

func TestLangfuseSink_DeliveryFailureDoesNotPanic(t *testing.T) {
	// Unreachable host: the event must be dropped quietly.
	s := NewLangfuseSink("pk-test", "sk-test", "http://127.0.0.1:1")
	s.LogEvent("task_created", "task_store", nil)
	s.(*LangfuseSink).Flush()
}

func TestNop_Discards(t *testing.T) {
	Nop{}.LogEvent("anything", "anywhere", map[string]any{"k": "v"})
}
