package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/andy/workcal/internal/domain"
)

func TestWriteAndParse(t *testing.T) {
	known, err := EntryFromEvent(domain.CalendarEvent{ID: "e1", ClientID: "c1", Date: "2024-03-05", Hours: 8, Notes: "kickoff"}, "Acme")
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	dangling, err := EntryFromEvent(domain.CalendarEvent{ID: "e2", ClientID: "gone", Date: "2024-03-06", Hours: 4}, "")
	if err != nil {
		t.Fatalf("entry: %v", err)
	}

	var buf bytes.Buffer
	stamp := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	if err := Write(&buf, []Entry{known, dangling}, stamp); err != nil {
		t.Fatalf("write: %v", err)
	}
	body := buf.String()
	if !strings.HasPrefix(body, "BEGIN:VCALENDAR") || !strings.Contains(body, "DESCRIPTION:kickoff") {
		t.Fatalf("unexpected calendar:\n%s", body)
	}

	parsed, err := Parse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 events, got %d", len(parsed))
	}
	if parsed[0].UID != "e1" || parsed[0].Summary != "Acme" || !parsed[0].AllDay {
		t.Fatalf("unexpected first event %+v", parsed[0])
	}
	if parsed[0].Start != "20240305" || parsed[0].End != "20240305" {
		t.Fatalf("expected all-day dates on the session day, got %s..%s", parsed[0].Start, parsed[0].End)
	}
	if parsed[1].Summary != FallbackSummary {
		t.Fatalf("expected fallback summary, got %q", parsed[1].Summary)
	}
}

func TestEntryFromEventRejectsBadDate(t *testing.T) {
	if _, err := EntryFromEvent(domain.CalendarEvent{ID: "e1", Date: "05/03/2024"}, "Acme"); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestFilename(t *testing.T) {
	got := Filename(domain.YearMonth{Year: 2024, Month: time.March})
	if got != "calendar_March_2024.ics" {
		t.Fatalf("unexpected filename %q", got)
	}
}

func TestSpan(t *testing.T) {
	start, end, err := ParsedEntry{Start: "20240312T090000Z", End: "20240312T133000Z"}.Span()
	if err != nil {
		t.Fatalf("span: %v", err)
	}
	if got := end.Sub(start); got != 4*time.Hour+30*time.Minute {
		t.Fatalf("unexpected duration %v", got)
	}

	start, end, err = ParsedEntry{Start: "20240311", AllDay: true}.Span()
	if err != nil || !end.IsZero() || start.Day() != 11 {
		t.Fatalf("unexpected all-day span %v %v %v", start, end, err)
	}

	if _, _, err := (ParsedEntry{Start: "garbage"}).Span(); err == nil {
		t.Fatalf("expected error for malformed DTSTART")
	}
}
