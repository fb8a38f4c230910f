package repository

import (
	"time"

	"github.com/andy/workcal/internal/domain"
)

// timeLayout is the RFC3339 format for storing times in SQLite
const timeLayout = time.RFC3339

// formatTime returns the current time formatted as RFC3339
func formatTime() string {
	return time.Now().UTC().Format(timeLayout)
}

func clientIndex(clients []domain.Client, id string) int {
	for i := range clients {
		if clients[i].ID == id {
			return i
		}
	}
	return -1
}

func eventIndex(events []domain.CalendarEvent, id string) int {
	for i := range events {
		if events[i].ID == id {
			return i
		}
	}
	return -1
}

// filterEvents returns a fresh slice of the events matching keep
func filterEvents(events []domain.CalendarEvent, keep func(domain.CalendarEvent) bool) []domain.CalendarEvent {
	out := make([]domain.CalendarEvent, 0)
	for _, e := range events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
