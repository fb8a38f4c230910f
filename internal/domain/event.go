package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the storage form of a calendar date
const DateLayout = "2006-01-02"

// HoursPerDay converts logged hours into billable days
const HoursPerDay = 8.0

// WorkMode says where a session took place
type WorkMode string

const (
	WorkModeOnSite     WorkMode = "OnSite"
	WorkModeRemoteWork WorkMode = "RemoteWork"
)

// ParseWorkMode accepts canonical names, short forms and legacy labels
func ParseWorkMode(s string) (WorkMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "onsite", "on-site", "on_site", "site", "sede":
		return WorkModeOnSite, nil
	case "remotework", "remote", "remote-work", "smart", "smart working", "smartworking":
		return WorkModeRemoteWork, nil
	}
	return "", fmt.Errorf("unknown work mode %q", s)
}

// UnmarshalText lets JSON decoding normalize legacy labels
func (m *WorkMode) UnmarshalText(b []byte) error {
	parsed, err := ParseWorkMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Label is the short human form of the mode
func (m WorkMode) Label() string {
	if m == WorkModeRemoteWork {
		return "Remote"
	}
	return "On site"
}

// CalendarEvent is one logged work session for a client on a date
type CalendarEvent struct {
	ID        string   `json:"id"`
	Date      string   `json:"date"`
	ClientID  string   `json:"clientId"`
	Hours     float64  `json:"hours"`
	Mode      WorkMode `json:"mode"`
	Notes     string   `json:"notes"`
	IsFullDay bool     `json:"isFullDay"`
	StartTime string   `json:"startTime,omitempty"` // HH:mm
	EndTime   string   `json:"endTime,omitempty"`   // HH:mm
}

// NewCalendarEvent creates a full-day on-site session
func NewCalendarEvent(clientID, date string) CalendarEvent {
	return CalendarEvent{
		ID:        NewID(),
		Date:      date,
		ClientID:  clientID,
		Hours:     HoursPerDay,
		Mode:      WorkModeOnSite,
		IsFullDay: true,
	}
}

// ApplyDefaults fills the fields the entry form may leave empty
func (e *CalendarEvent) ApplyDefaults() {
	if e.ID == "" {
		e.ID = NewID()
	}
	if e.Hours == 0 {
		e.Hours = HoursPerDay
	}
	if e.Mode == "" {
		e.Mode = WorkModeOnSite
	}
}

// Days returns the session length in billable days
func (e CalendarEvent) Days() float64 {
	return e.Hours / HoursPerDay
}

// Day parses the event date as a calendar day in UTC
func (e CalendarEvent) Day() (time.Time, error) {
	return ParseDate(e.Date)
}

// Validate returns an error if the event is invalid
func (e CalendarEvent) Validate() error {
	if strings.TrimSpace(e.ClientID) == "" {
		return errors.New("client is required")
	}
	if strings.TrimSpace(e.Date) == "" {
		return errors.New("date is required")
	}
	if _, err := ParseDate(e.Date); err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}
	if !finite(e.Hours) || e.Hours <= 0 {
		return errors.New("hours must be a positive number")
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD string with no time zone attached
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// FormatDate renders the calendar day of t, ignoring its time of day
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
