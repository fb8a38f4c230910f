package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/andy/workcal/internal/domain"
	"github.com/andy/workcal/internal/ics"
	"github.com/andy/workcal/internal/repository"
)

// ErrInvalidCalendar is returned for an iCalendar file that does not parse
var ErrInvalidCalendar = errors.New("invalid calendar file")

// CalendarImport counts the outcome of an iCalendar import
type CalendarImport struct {
	Added   int
	Skipped int // already present or without a usable date
}

// CalendarExportService writes a month of sessions as an iCalendar file
// and reads sessions back from one
type CalendarExportService interface {
	// Export writes one all-day VEVENT per event in the month and returns how many were written
	Export(ctx context.Context, ym domain.YearMonth, w io.Writer) (int, error)

	// Filename returns calendar_<MonthName>_<Year>.ics
	Filename(ym domain.YearMonth) string

	// Import logs every VEVENT in r as a session for clientID. The VEVENT UID
	// becomes the event id, so events already present are skipped.
	Import(ctx context.Context, clientID string, r io.Reader) (*CalendarImport, error)
}

type calendarExportService struct {
	repo repository.Repository
	now  func() time.Time
}

// NewCalendarExportService creates a new calendar export service
func NewCalendarExportService(repo repository.Repository) CalendarExportService {
	return &calendarExportService{repo: repo, now: time.Now}
}

func (s *calendarExportService) Export(ctx context.Context, ym domain.YearMonth, w io.Writer) (int, error) {
	clients := s.repo.ListClients()
	events := s.repo.FindEventsInMonth(ym)
	SortEventsByDate(events)

	entries := make([]ics.Entry, 0, len(events))
	for _, e := range events {
		name := ""
		if ref := ResolveClient(clients, e.ClientID); ref.Known {
			name = ref.Name
		}
		entry, err := ics.EntryFromEvent(e, name)
		if err != nil {
			return 0, fmt.Errorf("failed to export calendar: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := ics.Write(w, entries, s.now()); err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (s *calendarExportService) Filename(ym domain.YearMonth) string {
	return ics.Filename(ym)
}

func (s *calendarExportService) Import(ctx context.Context, clientID string, r io.Reader) (*CalendarImport, error) {
	if _, ok := s.repo.GetClient(clientID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrClientNotFound, clientID)
	}

	entries, err := ics.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCalendar, err)
	}

	existing := make(map[string]bool)
	for _, e := range s.repo.ListEvents() {
		existing[e.ID] = true
	}

	result := &CalendarImport{}
	for _, entry := range entries {
		if existing[entry.UID] {
			result.Skipped++
			continue
		}
		event, ok := eventFromEntry(entry, clientID)
		if !ok {
			result.Skipped++
			continue
		}
		if err := s.repo.UpsertEvent(ctx, event); err != nil {
			return result, fmt.Errorf("failed to import event %s: %w", entry.UID, err)
		}
		existing[entry.UID] = true
		result.Added++
	}
	return result, nil
}

// eventFromEntry maps an all-day VEVENT to a full day and a timed one to its duration
func eventFromEntry(entry ics.ParsedEntry, clientID string) (domain.CalendarEvent, bool) {
	start, end, err := entry.Span()
	if err != nil {
		return domain.CalendarEvent{}, false
	}

	event := domain.NewCalendarEvent(clientID, domain.FormatDate(start))
	event.ID = entry.UID
	event.Notes = strings.TrimSpace(entry.Description)
	if event.Notes == "" {
		event.Notes = strings.TrimSpace(entry.Summary)
	}

	if !entry.AllDay && end.After(start) && end.Sub(start) < 24*time.Hour {
		event.Hours = end.Sub(start).Hours()
		event.IsFullDay = false
		event.StartTime = start.Format("15:04")
		event.EndTime = end.Format("15:04")
	}
	if event.Validate() != nil {
		return domain.CalendarEvent{}, false
	}
	return event, true
}
