// Package gateway runs the assistant as a long-lived service: chat channels
// feed the message bus, the task manager answers, and the reminder scheduler
// pushes due-task notices back out.
package gateway

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/taskpilotco/taskpilot/internal/agent"
	"github.com/taskpilotco/taskpilot/internal/bus"
	"github.com/taskpilotco/taskpilot/internal/channel"
	"github.com/taskpilotco/taskpilot/internal/config"
	"github.com/taskpilotco/taskpilot/internal/remind"
	"github.com/taskpilotco/taskpilot/internal/task"
)

type Gateway struct {
	cfg        *config.Config
	bus        *bus.MessageBus
	manager    *agent.Manager
	channels   *channel.ChannelManager
	reminders  *remind.Service
	signalChan chan os.Signal // for testing
}

// Options for creating a Gateway with injected collaborators.
type Options struct {
	Manager    *agent.Manager
	SignalChan chan os.Signal
}

func New(cfg *config.Config) (*Gateway, error) {
	return NewWithOptions(cfg, Options{})
}

func NewWithOptions(cfg *config.Config, opts Options) (*Gateway, error) {
	g := &Gateway{cfg: cfg, signalChan: opts.SignalChan}

	g.bus = bus.NewMessageBus(config.DefaultBufSize)

	mgr := opts.Manager
	if mgr == nil {
		var err error
		mgr, err = agent.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("create task manager: %w", err)
		}
	}
	g.manager = mgr

	chMgr, err := channel.NewChannelManager(cfg.Channels, g.bus)
	if err != nil {
		return nil, fmt.Errorf("create channel manager: %w", err)
	}
	g.channels = chMgr

	if cfg.Reminders.Enabled {
		g.reminders = remind.NewService(cfg.Reminders.Spec, mgr.Store(), nil)
		g.reminders.OnDue = func(due []task.Task) {
			if cfg.Reminders.Channel == "" || cfg.Reminders.To == "" {
				return
			}
			g.bus.Outbound <- bus.OutboundMessage{
				Channel: cfg.Reminders.Channel,
				ChatID:  cfg.Reminders.To,
				Content: remind.FormatReminder(due),
			}
		}
	}

	return g, nil
}

func (g *Gateway) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go g.bus.DispatchOutbound(ctx)

	if err := g.channels.StartAll(ctx); err != nil {
		return fmt.Errorf("start channels: %w", err)
	}
	log.Printf("[gateway] channels started: %v", g.channels.EnabledChannels())

	if g.reminders != nil {
		if err := g.reminders.Start(ctx); err != nil {
			log.Printf("[gateway] reminders start warning: %v", err)
		}
	}

	go g.processLoop(ctx)

	log.Printf("[gateway] running with %s agent", g.manager.AgentType())

	sigCh := g.signalChan
	if sigCh == nil {
		sigCh = make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	}
	<-sigCh

	log.Printf("[gateway] shutting down...")
	return g.Shutdown()
}

func (g *Gateway) processLoop(ctx context.Context) {
	for {
		select {
		case msg := <-g.bus.Inbound:
			log.Printf("[gateway] inbound from %s/%s: %s", msg.Channel, msg.SenderID, truncate(msg.Content, 80))

			result := g.manager.Process(ctx, msg.Content)
			if result != "" {
				g.bus.Outbound <- bus.OutboundMessage{
					Channel: msg.Channel,
					ChatID:  msg.ChatID,
					Content: result,
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

func (g *Gateway) Shutdown() error {
	if g.reminders != nil {
		g.reminders.Stop()
	}
	_ = g.channels.StopAll()
	g.manager.Close()
	log.Printf("[gateway] shutdown complete")
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
