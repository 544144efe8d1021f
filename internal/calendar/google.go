package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/taskpilotco/taskpilot/internal/config"
	"github.com/taskpilotco/taskpilot/internal/obs"
)

const calendarSource = "calendar_tool"

type googleService struct {
	svc  *gcal.Service
	sink obs.Sink
}

// New builds a Google Calendar service from the configured OAuth client
// credentials and a previously stored token. If either file is missing or
// unreadable the integration silently degrades to Disabled; the failure is
// reported to the sink only.
func New(ctx context.Context, cfg config.CalendarConfig, sink obs.Sink) Service {
	if sink == nil {
		sink = obs.Nop{}
	}

	svc, err := newGoogleClient(ctx, cfg)
	if err != nil {
		sink.LogEvent("calendar_auth_failed", calendarSource, map[string]any{"error": err.Error()})
		return Disabled{}
	}

	sink.LogEvent("calendar_authenticated", calendarSource, map[string]any{"status": "success"})
	return &googleService{svc: svc, sink: sink}
}

func newGoogleClient(ctx context.Context, cfg config.CalendarConfig) (*gcal.Service, error) {
	creds, err := os.ReadFile(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	conf, err := google.ConfigFromJSON(creds, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	tokData, err := os.ReadFile(cfg.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokData, &tok); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	svc, err := gcal.NewService(ctx, option.WithHTTPClient(conf.Client(ctx, &tok)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return svc, nil
}

func (g *googleService) Enabled() bool { return true }

func (g *googleService) CreateEvent(summary, description string, start, end time.Time, location string) (*Event, error) {
	ev := &gcal.Event{
		Summary:     summary,
		Description: description,
		Location:    location,
		Start:       &gcal.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}

	created, err := g.svc.Events.Insert("primary", ev).Do()
	if err != nil {
		g.sink.LogEvent("calendar_event_creation_failed", calendarSource, map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("create event: %w", err)
	}

	g.sink.LogEvent("calendar_event_created", calendarSource, map[string]any{
		"event_id": created.Id,
		"summary":  summary,
	})
	return fromGoogleEvent(created), nil
}

func (g *googleService) ListEvents(max int, since time.Time) ([]Event, error) {
	if max <= 0 {
		max = 10
	}
	res, err := g.svc.Events.List("primary").
		MaxResults(int64(max)).
		TimeMin(since.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]Event, 0, len(res.Items))
	for _, item := range res.Items {
		events = append(events, *fromGoogleEvent(item))
	}
	g.sink.LogEvent("calendar_events_listed", calendarSource, map[string]any{"count": len(events)})
	return events, nil
}

func (g *googleService) GetEvent(id string) (*Event, error) {
	ev, err := g.svc.Events.Get("primary", id).Do()
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return fromGoogleEvent(ev), nil
}

func (g *googleService) DeleteEvent(id string) (bool, error) {
	if err := g.svc.Events.Delete("primary", id).Do(); err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	g.sink.LogEvent("calendar_event_deleted", calendarSource, map[string]any{"event_id": id})
	return true, nil
}

func fromGoogleEvent(ev *gcal.Event) *Event {
	out := &Event{
		ID:          ev.Id,
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
	}
	if ev.Start != nil {
		out.Start = parseEventTime(ev.Start)
	}
	if ev.End != nil {
		out.End = parseEventTime(ev.End)
	}
	return out
}

func parseEventTime(t *gcal.EventDateTime) time.Time {
	if t.DateTime != "" {
		if parsed, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return parsed
		}
	}
	if t.Date != "" {
		if parsed, err := time.Parse("2006-01-02", t.Date); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
