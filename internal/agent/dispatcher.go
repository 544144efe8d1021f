package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/taskpilotco/taskpilot/internal/calendar"
	"github.com/taskpilotco/taskpilot/internal/obs"
	"github.com/taskpilotco/taskpilot/internal/task"
)

const generalHelp = "I understand your request, but I'm not sure how to handle it. Please try:\n" +
	"- Creating a task\n" +
	"- Listing tasks\n" +
	"- Updating a task\n" +
	"- Getting statistics"

// Dispatcher executes a classified action against the task store and formats
// the result. Every branch converts internal failures into an
// "Error executing action" string; nothing escapes to the caller.
type Dispatcher struct {
	store *task.Store
	cal   calendar.Service
	sink  obs.Sink
}

func NewDispatcher(store *task.Store, cal calendar.Service, sink obs.Sink) *Dispatcher {
	if cal == nil {
		cal = calendar.Disabled{}
	}
	if sink == nil {
		sink = obs.Nop{}
	}
	return &Dispatcher{store: store, cal: cal, sink: sink}
}

func (d *Dispatcher) Execute(action Action, p Params) string {
	var result string
	var err error

	switch action {
	case ActionCreate:
		result = d.createTask(p)
	case ActionList:
		result = d.listTasks(p)
	case ActionUpdate:
		result, err = d.updateTask(p)
	case ActionDelete:
		result, err = d.deleteTask(p)
	case ActionStatistics:
		result = d.statistics()
	default:
		result = generalHelp
	}

	if err != nil {
		d.sink.LogEvent("action_execution_failed", pipelineSource, map[string]any{
			"action": string(action),
			"error":  err.Error(),
		})
		return fmt.Sprintf("Error executing action: %v", err)
	}
	return result
}

func (d *Dispatcher) createTask(p Params) string {
	title := p.Title
	if title == "" {
		title = "Untitled Task"
	}

	t := d.store.Create(title, p.Description, task.Priority(p.Priority), p.DueDate)

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Task created successfully!\nID: %d\nTitle: %s\nPriority: %s\nStatus: %s",
		t.ID, t.Title, t.Priority, t.Status)

	if t.DueDate != "" && d.cal.Enabled() {
		if when, err := time.Parse("2006-01-02", t.DueDate); err == nil {
			start := when.Add(9 * time.Hour)
			ev, err := d.cal.CreateEvent(t.Title, t.Description, start, start.Add(time.Hour), "")
			if err == nil && ev != nil {
				fmt.Fprintf(&sb, "\n📅 Calendar event created for %s", t.DueDate)
			}
		}
	}
	return sb.String()
}

func (d *Dispatcher) listTasks(p Params) string {
	tasks := d.store.List(task.Status(p.Status))
	if len(tasks) == 0 {
		return "No tasks found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 Found %d task(s):\n\n", len(tasks))
	for _, t := range tasks {
		fmt.Fprintf(&sb, "• ID %d: %s (%s, %s priority)\n", t.ID, t.Title, t.Status, t.Priority)
		if t.DueDate != "" {
			fmt.Fprintf(&sb, "  Due: %s\n", t.DueDate)
		}
		if t.Description != "" {
			fmt.Fprintf(&sb, "  Description: %s\n", t.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (d *Dispatcher) updateTask(p Params) (string, error) {
	if p.TaskID == 0 {
		return "Error: Task ID is required for updates.", nil
	}

	t, err := d.store.Apply(int(p.TaskID), task.Update{
		Title:       p.Title,
		Description: p.Description,
		Priority:    task.Priority(p.Priority),
		Status:      task.Status(p.Status),
		DueDate:     p.DueDate,
	})
	if err == task.ErrNotFound {
		return fmt.Sprintf("❌ Task %d not found.", p.TaskID), nil
	}
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("✅ Task %d updated successfully!\nTitle: %s\nStatus: %s\nPriority: %s",
		t.ID, t.Title, t.Status, t.Priority), nil
}

func (d *Dispatcher) deleteTask(p Params) (string, error) {
	if p.TaskID == 0 {
		return "Error: Task ID is required for deletion.", nil
	}

	if d.store.Delete(int(p.TaskID)) {
		return fmt.Sprintf("✅ Task %d deleted successfully!", p.TaskID), nil
	}
	return fmt.Sprintf("❌ Task %d not found.", p.TaskID), nil
}

func (d *Dispatcher) statistics() string {
	stats := d.store.Statistics()
	return fmt.Sprintf(`📊 Task Statistics:
• Total Tasks: %d
• Pending: %d
• In Progress: %d
• Completed: %d
• High Priority: %d
• Medium Priority: %d
• Low Priority: %d`,
		stats.Total, stats.Pending, stats.InProgress, stats.Completed,
		stats.HighPriority, stats.MediumPriority, stats.LowPriority)
}
