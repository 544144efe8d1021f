package bus

import (
	"context"
	"testing"
	"time"
)

func TestSessionKey(t *testing.T) {
	msg := &InboundMessage{Channel: "telegram", ChatID: "12345"}
	if got := msg.SessionKey(); got != "telegram:12345" {
		t.Errorf("SessionKey() = %q", got)
	}
}

func TestDispatchOutbound_RoutesToSubscriber(t *testing.T) {
	b := NewMessageBus(10)
	received := make(chan OutboundMessage, 1)
	b.SubscribeOutbound("telegram", func(msg OutboundMessage) {
		received <- msg
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.DispatchOutbound(ctx)

	b.Outbound <- OutboundMessage{Channel: "telegram", ChatID: "1", Content: "hi"}

	select {
	case got := <-received:
		if got.ChatID != "1" || got.Content != "hi" {
			t.Errorf("received = %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestDispatchOutbound_DropsUnknownChannel(t *testing.T) {
	b := NewMessageBus(10)
	received := make(chan OutboundMessage, 2)
	b.SubscribeOutbound("telegram", func(msg OutboundMessage) {
		received <- msg
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.DispatchOutbound(ctx)

	b.Outbound <- OutboundMessage{Channel: "slack", ChatID: "1", Content: "dropped"}
	b.Outbound <- OutboundMessage{Channel: "telegram", ChatID: "2", Content: "kept"}

	select {
	case got := <-received:
		if got.Content != "kept" {
			t.Errorf("received = %+v, unknown-channel message should be dropped", got)
		}
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestDispatchOutbound_StopsOnContextCancel(t *testing.T) {
	b := NewMessageBus(1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		b.DispatchOutbound(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatch loop did not stop after cancel")
	}
}
