package obs

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

const ingestionPath = "/api/public/ingestion"

// LangfuseSink posts events to the Langfuse public ingestion API.
// Each event is delivered asynchronously; delivery failures are logged and
// dropped.
type LangfuseSink struct {
	publicKey  string
	secretKey  string
	host       string
	httpClient *http.Client
	wg         sync.WaitGroup
}

// NewLangfuseSink creates a sink for the given keys and host. If either key is
// empty it returns a Nop sink instead.
func NewLangfuseSink(publicKey, secretKey, host string) Sink {
	if strings.TrimSpace(publicKey) == "" || strings.TrimSpace(secretKey) == "" {
		return Nop{}
	}
	return &LangfuseSink{
		publicKey:  publicKey,
		secretKey:  secretKey,
		host:       strings.TrimRight(strings.TrimSpace(host), "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *LangfuseSink) LogEvent(event, source string, data map[string]any) {
	metadata := map[string]any{"agent": source}
	for k, v := range data {
		metadata[k] = v
	}

	body := map[string]any{
		"batch": []map[string]any{{
			"id":        eventID(),
			"type":      "event-create",
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
			"body": map[string]any{
				"id":       eventID(),
				"name":     event,
				"metadata": metadata,
			},
		}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		log.Printf("[obs] marshal event %s warning: %v", event, err)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.post(event, payload)
	}()
}

func (s *LangfuseSink) post(event string, payload []byte) {
	req, err := http.NewRequest(http.MethodPost, s.host+ingestionPath, bytes.NewReader(payload))
	if err != nil {
		log.Printf("[obs] create request for %s warning: %v", event, err)
		return
	}
	req.SetBasicAuth(s.publicKey, s.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("[obs] send event %s warning: %v", event, err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	// Ingestion returns 207 for partial success; anything under 400 is fine.
	if resp.StatusCode >= 400 {
		log.Printf("[obs] event %s rejected: http %d", event, resp.StatusCode)
	}
}

// Flush waits for in-flight deliveries. Called on shutdown.
func (s *LangfuseSink) Flush() {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Printf("[obs] flush timed out with events still in flight")
	}
}

func eventID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().UTC().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(b[:])
}
