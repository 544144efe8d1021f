// Package remind scans the task store on a cron schedule and reports tasks
// that are due or overdue.
package remind

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"

	"github.com/taskpilotco/taskpilot/internal/obs"
	"github.com/taskpilotco/taskpilot/internal/task"
)

const remindSource = "reminder_service"

type Service struct {
	spec  string
	store *task.Store
	sink  obs.Sink

	// OnDue receives the due tasks each time the schedule fires and at least
	// one open task is due.
	OnDue func(tasks []task.Task)

	mu   sync.Mutex
	cron *rcron.Cron
}

func NewService(spec string, store *task.Store, sink obs.Sink) *Service {
	if sink == nil {
		sink = obs.Nop{}
	}
	return &Service{spec: spec, store: store, sink: sink}
}

func (s *Service) Start(ctx context.Context) error {
	c := rcron.New(rcron.WithSeconds())
	if _, err := c.AddFunc(s.spec, s.scan); err != nil {
		return fmt.Errorf("register reminder schedule %q: %w", s.spec, err)
	}

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()

	c.Start()
	log.Printf("[remind] started with schedule %q", s.spec)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Service) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		c.Stop()
		log.Printf("[remind] stopped")
	}
}

func (s *Service) scan() {
	due := s.DueTasks(time.Now())
	if len(due) == 0 {
		return
	}

	s.sink.LogEvent("tasks_due", remindSource, map[string]any{"count": len(due)})
	log.Printf("[remind] %d task(s) due", len(due))

	if s.OnDue != nil {
		s.OnDue(due)
	}
}

// DueTasks returns open tasks whose due date is on or before the given day.
// Tasks without a parseable due date are skipped.
func (s *Service) DueTasks(now time.Time) []task.Task {
	today := now.Format("2006-01-02")
	cutoff, _ := time.Parse("2006-01-02", today)

	var due []task.Task
	for _, t := range s.store.List("") {
		if t.Status == task.StatusCompleted || t.DueDate == "" {
			continue
		}
		d, err := time.Parse("2006-01-02", t.DueDate)
		if err != nil {
			continue
		}
		if !d.After(cutoff) {
			due = append(due, t)
		}
	}
	return due
}

// FormatReminder renders due tasks as a short message.
func FormatReminder(tasks []task.Task) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "⏰ You have %d task(s) due:\n", len(tasks))
	for _, t := range tasks {
		fmt.Fprintf(&sb, "• ID %d: %s (due %s, %s priority)\n", t.ID, t.Title, t.DueDate, t.Priority)
	}
	return sb.String()
}
