package repository

import (
	"context"

	"github.com/andy/workcal/internal/domain"
)

// ClientRepository manages the client collection
type ClientRepository interface {
	ListClients() []domain.Client
	GetClient(id string) (domain.Client, bool) // false for unknown or deleted ids
	UpsertClient(ctx context.Context, client domain.Client) error
	DeleteClient(ctx context.Context, id string) error // does not touch events
}

// EventRepository manages the calendar event collection
type EventRepository interface {
	ListEvents() []domain.CalendarEvent
	UpsertEvent(ctx context.Context, event domain.CalendarEvent) error
	DeleteEvent(ctx context.Context, id string) error
	FindEventsOn(date string) []domain.CalendarEvent
	FindEventsForClient(clientID string) []domain.CalendarEvent
	FindEventsInMonth(ym domain.YearMonth) []domain.CalendarEvent
}

// Repository owns both collections and mirrors them to a KVStore
type Repository interface {
	ClientRepository
	EventRepository

	// Snapshot returns consistent copies of both collections
	Snapshot() ([]domain.Client, []domain.CalendarEvent)

	// ReplaceAll swaps both collections wholesale (backup import, reset)
	ReplaceAll(ctx context.Context, clients []domain.Client, events []domain.CalendarEvent) error
}
