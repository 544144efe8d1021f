// Package obs sends agent events to a Langfuse-compatible ingestion endpoint.
// The sink is fire-and-forget: a failing or unconfigured backend never affects
// the caller.
package obs

// Sink receives named events from every layer of the assistant.
// Implementations must never panic and must never block the caller on I/O.
type Sink interface {
	LogEvent(event, source string, data map[string]any)
}

// Nop discards all events. Used when observability keys are not configured.
type Nop struct{}

func (Nop) LogEvent(event, source string, data map[string]any) {}
