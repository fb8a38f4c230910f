package service

import (
	"sort"
	"time"

	"github.com/andy/workcal/internal/domain"
)

// UnknownClientName is shown for events whose client no longer exists
const UnknownClientName = "Unknown client"

// ClientRef is the result of resolving an event's client id.
// Known is false when the client was deleted.
type ClientRef struct {
	ID    string
	Name  string
	Color string
	Known bool
}

// ResolveClient looks up id in clients, falling back to the unknown-client variant
func ResolveClient(clients []domain.Client, id string) ClientRef {
	for _, c := range clients {
		if c.ID == id {
			return ClientRef{ID: c.ID, Name: c.Name, Color: c.Color, Known: true}
		}
	}
	return ClientRef{ID: id, Name: UnknownClientName}
}

// MonthTotals is the hour and work-mode breakdown of one month
type MonthTotals struct {
	Month       domain.YearMonth
	EventCount  int
	TotalHours  float64
	TotalDays   float64
	OnSiteHours float64
	RemoteHours float64
}

// OnSiteShare is the percentage of hours worked on site, 0 with no hours
func (t MonthTotals) OnSiteShare() float64 {
	return percent(t.OnSiteHours, t.TotalHours)
}

// RemoteShare is the percentage of hours worked remotely, 0 with no hours
func (t MonthTotals) RemoteShare() float64 {
	return percent(t.RemoteHours, t.TotalHours)
}

// ComputeMonthTotals sums the events whose date falls in ym
func ComputeMonthTotals(events []domain.CalendarEvent, ym domain.YearMonth) MonthTotals {
	totals := MonthTotals{Month: ym}
	for _, e := range events {
		if !ym.Contains(e.Date) {
			continue
		}
		totals.EventCount++
		totals.TotalHours += e.Hours
		switch e.Mode {
		case domain.WorkModeRemoteWork:
			totals.RemoteHours += e.Hours
		default:
			totals.OnSiteHours += e.Hours
		}
	}
	totals.TotalDays = totals.TotalHours / domain.HoursPerDay
	return totals
}

// ClientRevenue is one client's share of a month's revenue
type ClientRevenue struct {
	ClientID string
	Name     string
	Color    string
	Hours    float64
	Days     float64
	Revenue  float64
	Share    float64 // percentage of the month's total revenue
}

// ComputeClientRevenue returns the revenue per client for ym, in client order.
// Clients with zero revenue are left out. Events of deleted clients are not billed.
func ComputeClientRevenue(clients []domain.Client, events []domain.CalendarEvent, ym domain.YearMonth) []ClientRevenue {
	hours := make(map[string]float64)
	for _, e := range events {
		if ym.Contains(e.Date) {
			hours[e.ClientID] += e.Hours
		}
	}

	rows := make([]ClientRevenue, 0)
	for _, c := range clients {
		h := hours[c.ID]
		days := h / domain.HoursPerDay
		revenue := days * c.DailyRate
		if revenue <= 0 {
			continue
		}
		rows = append(rows, ClientRevenue{
			ClientID: c.ID,
			Name:     c.Name,
			Color:    c.Color,
			Hours:    h,
			Days:     days,
			Revenue:  revenue,
		})
	}

	total := TotalRevenue(rows)
	for i := range rows {
		rows[i].Share = percent(rows[i].Revenue, total)
	}
	return rows
}

// TotalRevenue sums a revenue breakdown
func TotalRevenue(rows []ClientRevenue) float64 {
	total := 0.0
	for _, r := range rows {
		total += r.Revenue
	}
	return total
}

// ClientStats is a client's all-time activity
type ClientStats struct {
	EventCount int
	Hours      float64
	Days       float64
}

// ComputeClientStats sums every event ever logged for client
func ComputeClientStats(clientID string, events []domain.CalendarEvent) ClientStats {
	var s ClientStats
	for _, e := range events {
		if e.ClientID != clientID {
			continue
		}
		s.EventCount++
		s.Hours += e.Hours
	}
	s.Days = s.Hours / domain.HoursPerDay
	return s
}

// ContractProgress returns the percentage of contracted days already worked,
// clamped at 100. ok is false for clients without a contract cap.
func ContractProgress(client domain.Client, events []domain.CalendarEvent) (progress float64, ok bool) {
	if !client.HasContract() {
		return 0, false
	}
	stats := ComputeClientStats(client.ID, events)
	progress = stats.Days / client.TotalDaysContracted * 100
	if progress > 100 {
		progress = 100
	}
	return progress, true
}

// Productivity compares the days with logged work to the month's weekdays
type Productivity struct {
	WorkedDays        int
	AvailableWeekdays int
	Ratio             float64 // percentage
}

// ComputeProductivity counts distinct dates with at least one event in ym
func ComputeProductivity(events []domain.CalendarEvent, ym domain.YearMonth) Productivity {
	dates := make(map[string]struct{})
	for _, e := range events {
		if ym.Contains(e.Date) {
			dates[e.Date] = struct{}{}
		}
	}
	p := Productivity{
		WorkedDays:        len(dates),
		AvailableWeekdays: ym.Weekdays(),
	}
	p.Ratio = percent(float64(p.WorkedDays), float64(p.AvailableWeekdays))
	return p
}

// DayMarker is one dot on a calendar day
type DayMarker struct {
	EventID string
	Client  ClientRef
	Hours   float64
	Mode    domain.WorkMode
}

// CalendarDay is one cell of the month grid
type CalendarDay struct {
	Date    time.Time
	InMonth bool
	Markers []DayMarker
}

// Key returns the cell's YYYY-MM-DD date
func (d CalendarDay) Key() string {
	return domain.FormatDate(d.Date)
}

// BuildCalendarGrid lays ym out in Monday-first weeks, padding with the
// neighbouring months' days, and attaches each date's event markers.
func BuildCalendarGrid(clients []domain.Client, events []domain.CalendarEvent, ym domain.YearMonth) []CalendarDay {
	start := ym.First()
	for start.Weekday() != time.Monday {
		start = start.AddDate(0, 0, -1)
	}
	end := ym.Last()
	for end.Weekday() != time.Sunday {
		end = end.AddDate(0, 0, 1)
	}

	byDate := make(map[string][]domain.CalendarEvent)
	for _, e := range events {
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	days := make([]CalendarDay, 0, 42)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := domain.FormatDate(d)
		cell := CalendarDay{
			Date:    d,
			InMonth: d.Month() == ym.Month && d.Year() == ym.Year,
			Markers: make([]DayMarker, 0),
		}
		for _, e := range byDate[key] {
			cell.Markers = append(cell.Markers, DayMarker{
				EventID: e.ID,
				Client:  ResolveClient(clients, e.ClientID),
				Hours:   e.Hours,
				Mode:    e.Mode,
			})
		}
		days = append(days, cell)
	}
	return days
}

// SortEventsByDate orders events by date, keeping insertion order within a day
func SortEventsByDate(events []domain.CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date < events[j].Date
	})
}

// percent returns part/whole*100, or 0 when whole is not positive
func percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}
