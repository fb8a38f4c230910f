package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andy/workcal/internal/domain"
	"github.com/andy/workcal/internal/repository"
)

var (
	ErrInvalidEvent  = errors.New("invalid event")
	ErrEventNotFound = errors.New("event not found")
)

// EventInput is the event form. An empty ID creates a new event.
// Zero Hours and an empty Mode take the defaults (8h, on site).
type EventInput struct {
	ID        string
	Date      string
	ClientID  string
	Hours     float64
	Mode      string
	Notes     string
	IsFullDay bool
	StartTime string
	EndTime   string
}

// EventService manages logged work sessions
type EventService interface {
	// Save validates the input and creates or replaces the event
	Save(ctx context.Context, input EventInput) (domain.CalendarEvent, error)

	// Delete removes an event
	Delete(ctx context.Context, id string) error

	// Get returns one event
	Get(ctx context.Context, id string) (domain.CalendarEvent, error)

	// Day lists the events on a YYYY-MM-DD date
	Day(ctx context.Context, date string) []domain.CalendarEvent

	// Month lists the events of a month, ordered by date
	Month(ctx context.Context, ym domain.YearMonth) []domain.CalendarEvent

	// ForClient lists every event logged for a client, ordered by date
	ForClient(ctx context.Context, clientID string) []domain.CalendarEvent

	// List returns every event
	List(ctx context.Context) []domain.CalendarEvent
}

type eventService struct {
	repo repository.EventRepository
}

// NewEventService creates a new event service
func NewEventService(repo repository.EventRepository) EventService {
	return &eventService{repo: repo}
}

func (s *eventService) Save(ctx context.Context, input EventInput) (domain.CalendarEvent, error) {
	mode, err := domain.ParseWorkMode(input.Mode)
	if err != nil {
		return domain.CalendarEvent{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	event := domain.CalendarEvent{
		ID:        strings.TrimSpace(input.ID),
		Date:      strings.TrimSpace(input.Date),
		ClientID:  strings.TrimSpace(input.ClientID),
		Hours:     input.Hours,
		Mode:      mode,
		Notes:     strings.TrimSpace(input.Notes),
		IsFullDay: input.IsFullDay,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
	}
	if input.Hours == 0 {
		event.IsFullDay = true
	}
	event.ApplyDefaults()

	if err := event.Validate(); err != nil {
		return domain.CalendarEvent{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	if err := s.repo.UpsertEvent(ctx, event); err != nil {
		return event, fmt.Errorf("failed to save event: %w", err)
	}
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func (s *eventService) Get(ctx context.Context, id string) (domain.CalendarEvent, error) {
	for _, e := range s.repo.ListEvents() {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.CalendarEvent{}, fmt.Errorf("%w: %s", ErrEventNotFound, id)
}

func (s *eventService) Day(ctx context.Context, date string) []domain.CalendarEvent {
	return s.repo.FindEventsOn(strings.TrimSpace(date))
}

func (s *eventService) Month(ctx context.Context, ym domain.YearMonth) []domain.CalendarEvent {
	events := s.repo.FindEventsInMonth(ym)
	SortEventsByDate(events)
	return events
}

func (s *eventService) ForClient(ctx context.Context, clientID string) []domain.CalendarEvent {
	events := s.repo.FindEventsForClient(clientID)
	SortEventsByDate(events)
	return events
}

func (s *eventService) List(ctx context.Context) []domain.CalendarEvent {
	return s.repo.ListEvents()
}
