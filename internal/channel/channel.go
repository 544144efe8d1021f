// Package channel hosts chat-surface adapters that feed the message bus.
package channel

import (
	"context"

	"github.com/taskpilotco/taskpilot/internal/bus"
)

type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
	Send(msg bus.OutboundMessage) error
}

// BaseChannel carries the pieces every channel shares: its name, the bus it
// publishes to, and an optional sender allowlist.
type BaseChannel struct {
	name      string
	bus       *bus.MessageBus
	allowFrom map[string]struct{}
}

func NewBaseChannel(name string, b *bus.MessageBus, allowFrom []string) BaseChannel {
	ch := BaseChannel{name: name, bus: b}
	if len(allowFrom) > 0 {
		ch.allowFrom = make(map[string]struct{}, len(allowFrom))
		for _, id := range allowFrom {
			ch.allowFrom[id] = struct{}{}
		}
	}
	return ch
}

func (c *BaseChannel) Name() string { return c.name }

// IsAllowed reports whether a sender passes the allowlist. An empty allowlist
// admits everyone.
func (c *BaseChannel) IsAllowed(senderID string) bool {
	if c.allowFrom == nil {
		return true
	}
	_, ok := c.allowFrom[senderID]
	return ok
}
