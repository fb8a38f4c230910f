package ics

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/andy/workcal/internal/domain"
)

const productID = "-//workcal//calendar export//EN"

// FallbackSummary titles events whose client no longer exists
const FallbackSummary = "Work"

// Entry is one all-day session to export
type Entry struct {
	UID     string
	Date    time.Time
	Summary string
	Notes   string
}

// EntryFromEvent builds an Entry, titling it with clientName or the fallback
func EntryFromEvent(e domain.CalendarEvent, clientName string) (Entry, error) {
	day, err := e.Day()
	if err != nil {
		return Entry{}, fmt.Errorf("event %s: %w", e.ID, err)
	}
	summary := clientName
	if summary == "" {
		summary = FallbackSummary
	}
	return Entry{UID: e.ID, Date: day, Summary: summary, Notes: e.Notes}, nil
}

// Build renders entries as a VCALENDAR with one all-day VEVENT each.
// DTSTART and DTEND both carry the session date.
func Build(entries []Entry, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, en := range entries {
		ev := cal.AddEvent(en.UID)
		ev.SetDtStampTime(stamp.UTC())
		ev.SetSummary(en.Summary)
		ev.SetAllDayStartAt(en.Date)
		ev.SetAllDayEndAt(en.Date)
		if en.Notes != "" {
			ev.SetDescription(en.Notes)
		}
	}
	return cal
}

// Write serializes entries to w
func Write(w io.Writer, entries []Entry, stamp time.Time) error {
	if _, err := io.WriteString(w, Build(entries, stamp).Serialize()); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

// Filename returns calendar_<MonthName>_<Year>.ics
func Filename(ym domain.YearMonth) string {
	return fmt.Sprintf("calendar_%s_%d.ics", ym.Month.String(), ym.Year)
}
