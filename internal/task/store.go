package task

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/taskpilotco/taskpilot/internal/obs"
)

// ErrNotFound signals a lookup on an absent task id. It is an expected
// condition, not a failure.
var ErrNotFound = errors.New("task not found")

const storeSource = "task_store"

// Store holds all tasks for the process. Insertion order is id order. Ids come
// from a monotonically increasing counter and are never reused, even after
// deletes. All mutations are serialized by a single mutex.
type Store struct {
	mu     sync.Mutex
	tasks  []Task
	nextID int
	sink   obs.Sink
	now    func() time.Time
}

func NewStore(sink obs.Sink) *Store {
	if sink == nil {
		sink = obs.Nop{}
	}
	return &Store{sink: sink, now: time.Now}
}

// Create appends a new pending task and returns a copy of it. An invalid or
// empty priority falls back to medium so that creation always succeeds.
func (s *Store) Create(title, description string, priority Priority, dueDate string) Task {
	if !ValidPriority(priority) {
		priority = PriorityMedium
	}

	s.mu.Lock()
	s.nextID++
	t := Task{
		ID:          s.nextID,
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      StatusPending,
		DueDate:     dueDate,
		CreatedAt:   s.now(),
	}
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()

	s.sink.LogEvent("task_created", storeSource, map[string]any{
		"task_id":  t.ID,
		"title":    t.Title,
		"priority": string(t.Priority),
	})
	return t
}

// List returns tasks in insertion order. An empty filter returns everything;
// otherwise only tasks with exactly that status are returned.
func (s *Store) List(filter Status) []Task {
	s.mu.Lock()
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if filter == "" || t.Status == filter {
			out = append(out, t)
		}
	}
	s.mu.Unlock()

	data := map[string]any{"count": len(out)}
	if filter != "" {
		data["status"] = string(filter)
	}
	s.sink.LogEvent("tasks_listed", storeSource, data)
	return out
}

// ListByPriority returns tasks with the given priority, in insertion order.
func (s *Store) ListByPriority(p Priority) []Task {
	s.mu.Lock()
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.Priority == p {
			out = append(out, t)
		}
	}
	s.mu.Unlock()

	s.sink.LogEvent("tasks_filtered", storeSource, map[string]any{
		"priority": string(p),
		"count":    len(out),
	})
	return out
}

// Get returns the task with the given id, or false if absent.
func (s *Store) Get(id int) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			s.sink.LogEvent("task_retrieved", storeSource, map[string]any{"task_id": id})
			return t, true
		}
	}
	return Task{}, false
}

// Update describes a partial task update. Empty fields are skipped: a caller
// cannot clear a field back to empty through Update.
type Update struct {
	Title       string
	Description string
	Priority    Priority
	Status      Status
	DueDate     string
}

// Apply overwrites each non-empty field of the task with id. Setting status to
// completed stamps CompletedAt; moving away from completed leaves the old
// stamp in place. Returns ErrNotFound if the id is absent and a validation
// error for out-of-range priority or status values.
func (s *Store) Apply(id int, u Update) (Task, error) {
	if u.Priority != "" && !ValidPriority(u.Priority) {
		return Task{}, fmt.Errorf("invalid priority %q", u.Priority)
	}
	if u.Status != "" && !ValidStatus(u.Status) {
		return Task{}, fmt.Errorf("invalid status %q", u.Status)
	}

	s.mu.Lock()
	var updated *Task
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		t := &s.tasks[i]
		if u.Title != "" {
			t.Title = u.Title
		}
		if u.Description != "" {
			t.Description = u.Description
		}
		if u.Priority != "" {
			t.Priority = u.Priority
		}
		if u.Status != "" {
			t.Status = u.Status
			if u.Status == StatusCompleted {
				now := s.now()
				t.CompletedAt = &now
			}
		}
		if u.DueDate != "" {
			t.DueDate = u.DueDate
		}
		copied := *t
		updated = &copied
		break
	}
	s.mu.Unlock()

	if updated == nil {
		return Task{}, ErrNotFound
	}
	s.sink.LogEvent("task_updated", storeSource, map[string]any{
		"task_id":  id,
		"status":   string(u.Status),
		"priority": string(u.Priority),
	})
	return *updated, nil
}

// Delete removes the task with the given id and reports whether a removal
// happened. Remaining tasks keep their ids.
func (s *Store) Delete(id int) bool {
	s.mu.Lock()
	removed := false
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			removed = true
			break
		}
	}
	s.mu.Unlock()

	if removed {
		s.sink.LogEvent("task_deleted", storeSource, map[string]any{"task_id": id})
	}
	return removed
}

// Statistics computes counts over the current collection.
func (s *Store) Statistics() Stats {
	s.mu.Lock()
	var st Stats
	st.Total = len(s.tasks)
	for _, t := range s.tasks {
		switch t.Status {
		case StatusPending:
			st.Pending++
		case StatusInProgress:
			st.InProgress++
		case StatusCompleted:
			st.Completed++
		}
		switch t.Priority {
		case PriorityHigh:
			st.HighPriority++
		case PriorityMedium:
			st.MediumPriority++
		case PriorityLow:
			st.LowPriority++
		}
	}
	s.mu.Unlock()

	s.sink.LogEvent("statistics_retrieved", storeSource, map[string]any{
		"total":       st.Total,
		"pending":     st.Pending,
		"in_progress": st.InProgress,
		"completed":   st.Completed,
	})
	return st
}
