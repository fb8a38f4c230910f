package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// ParsedEntry is a VEVENT read back from an exported calendar
type ParsedEntry struct {
	UID         string
	Summary     string
	Description string
	Start       string // raw DTSTART value
	End         string // raw DTEND value
	AllDay      bool
}

var dateTimeLayouts = []string{"20060102T150405Z", "20060102T150405", "20060102"}

// Span parses DTSTART and DTEND. Floating times are read as UTC.
// end is zero when the event has no DTEND.
func (p ParsedEntry) Span() (start, end time.Time, err error) {
	if start, err = parseDateTime(p.Start); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid DTSTART %q: %w", p.Start, err)
	}
	if p.End == "" {
		return start, time.Time{}, nil
	}
	if end, err = parseDateTime(p.End); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid DTEND %q: %w", p.End, err)
	}
	return start, end, nil
}

func parseDateTime(v string) (time.Time, error) {
	var err error
	for _, layout := range dateTimeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// Parse reads the VEVENTs of an iCalendar document. Events without a UID are skipped.
func Parse(r io.Reader) ([]ParsedEntry, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	out := make([]ParsedEntry, 0)
	for _, ve := range cal.Events() {
		uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
		if uid == nil || uid.Value == "" {
			continue
		}
		entry := ParsedEntry{UID: uid.Value}
		if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
			entry.Summary = p.Value
		}
		if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
			entry.Description = p.Value
		}
		if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
			entry.Start = p.Value
			entry.AllDay = isDateValue(p)
		}
		if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
			entry.End = p.Value
		}
		out = append(out, entry)
	}
	if len(out) == 0 && len(cal.Events()) > 0 {
		return nil, errors.New("calendar has no identifiable events")
	}
	return out, nil
}

func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}
