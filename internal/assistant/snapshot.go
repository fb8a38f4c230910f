package assistant

import (
	"time"

	"github.com/andy/workcal/internal/domain"
)

// Snapshot is the aggregated context handed to a responder
type Snapshot struct {
	CurrentDate  string        `json:"currentDate"`
	TotalClients int           `json:"totalClients"`
	TotalEvents  int           `json:"totalEvents"`
	MonthEvents  int           `json:"monthEvents"`
	MonthHours   float64       `json:"monthHours"`
	Clients      []ClientStats `json:"clients"`
}

// ClientStats is one client's all-time activity
type ClientStats struct {
	Name   string  `json:"name"`
	Events int     `json:"events"`
	Hours  float64 `json:"hours"`
}

// SnapshotFunc produces a fresh snapshot for each question
type SnapshotFunc func() Snapshot

// BuildSnapshot aggregates the collections for the month containing today
func BuildSnapshot(clients []domain.Client, events []domain.CalendarEvent, today time.Time) Snapshot {
	month := domain.MonthOf(today)
	snap := Snapshot{
		CurrentDate:  domain.FormatDate(today),
		TotalClients: len(clients),
		TotalEvents:  len(events),
		Clients:      make([]ClientStats, 0, len(clients)),
	}

	for _, e := range events {
		if month.Contains(e.Date) {
			snap.MonthEvents++
			snap.MonthHours += e.Hours
		}
	}

	for _, c := range clients {
		stats := ClientStats{Name: c.Name}
		for _, e := range events {
			if e.ClientID == c.ID {
				stats.Events++
				stats.Hours += e.Hours
			}
		}
		snap.Clients = append(snap.Clients, stats)
	}
	return snap
}

// TopClient returns the client with the most hours. ok is false when nobody has logged time.
func (s Snapshot) TopClient() (top ClientStats, ok bool) {
	for _, c := range s.Clients {
		if c.Hours > top.Hours {
			top = c
			ok = true
		}
	}
	return top, ok
}
