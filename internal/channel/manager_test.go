package channel

import (
	"context"
	"testing"

	"github.com/taskpilotco/taskpilot/internal/bus"
	"github.com/taskpilotco/taskpilot/internal/config"
)

func TestNewChannelManager_NoChannels(t *testing.T) {
	b := bus.NewMessageBus(10)
	m, err := NewChannelManager(config.ChannelsConfig{}, b)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if got := m.EnabledChannels(); len(got) != 0 {
		t.Errorf("enabled channels = %v, want none", got)
	}
	if err := m.StartAll(context.Background()); err != nil {
		t.Errorf("start with no channels: %v", err)
	}
	if err := m.StopAll(); err != nil {
		t.Errorf("stop with no channels: %v", err)
	}
}

func TestNewChannelManager_TelegramWithoutToken(t *testing.T) {
	b := bus.NewMessageBus(10)
	cfg := config.ChannelsConfig{Telegram: config.TelegramConfig{Enabled: true}}
	if _, err := NewChannelManager(cfg, b); err == nil {
		t.Error("expected error for enabled telegram without token")
	}
}

func TestNewChannelManager_RegistersTelegram(t *testing.T) {
	b := bus.NewMessageBus(10)
	cfg := config.ChannelsConfig{Telegram: config.TelegramConfig{Enabled: true, Token: "test-token"}}
	m, err := NewChannelManager(cfg, b)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	got := m.EnabledChannels()
	if len(got) != 1 || got[0] != "telegram" {
		t.Errorf("enabled channels = %v, want [telegram]", got)
	}
}
