package httpapi

import (
	"github.com/andy/workcal/internal/domain"
	"github.com/andy/workcal/internal/service"
)

type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type clientRequest struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Type                string  `json:"type"`
	VATNumber           string  `json:"vatNumber"`
	DailyRate           float64 `json:"dailyRate"`
	TotalDaysContracted float64 `json:"totalDaysContracted"`
	Color               string  `json:"color"`
	TotalContractValue  float64 `json:"totalContractValue"`
}

func (r clientRequest) input() service.ClientInput {
	return service.ClientInput{
		ID:                  r.ID,
		Name:                r.Name,
		Type:                r.Type,
		VATNumber:           r.VATNumber,
		DailyRate:           r.DailyRate,
		TotalDaysContracted: r.TotalDaysContracted,
		Color:               r.Color,
		TotalContractValue:  r.TotalContractValue,
	}
}

type eventRequest struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	ClientID  string  `json:"clientId"`
	Hours     float64 `json:"hours"`
	Mode      string  `json:"mode"`
	Notes     string  `json:"notes"`
	IsFullDay bool    `json:"isFullDay"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
}

func (r eventRequest) input() service.EventInput {
	return service.EventInput{
		ID:        r.ID,
		Date:      r.Date,
		ClientID:  r.ClientID,
		Hours:     r.Hours,
		Mode:      r.Mode,
		Notes:     r.Notes,
		IsFullDay: r.IsFullDay,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
	}
}

type clientResponse struct {
	domain.Client
	EventCount int      `json:"eventCount"`
	Hours      float64  `json:"hours"`
	Days       float64  `json:"days"`
	Progress   *float64 `json:"progress,omitempty"`
}

func newClientResponse(o service.ClientOverview) clientResponse {
	resp := clientResponse{
		Client:     o.Client,
		EventCount: o.Stats.EventCount,
		Hours:      o.Stats.Hours,
		Days:       o.Stats.Days,
	}
	if o.HasProgress {
		p := o.Progress
		resp.Progress = &p
	}
	return resp
}

type eventResponse struct {
	domain.CalendarEvent
	ClientName  string `json:"clientName"`
	ClientKnown bool   `json:"clientKnown"`
}

type revenueResponse struct {
	ClientID string  `json:"clientId"`
	Name     string  `json:"name"`
	Color    string  `json:"color"`
	Hours    float64 `json:"hours"`
	Days     float64 `json:"days"`
	Revenue  float64 `json:"revenue"`
	Share    float64 `json:"share"`
}

type statsResponse struct {
	Month             string            `json:"month"`
	EventCount        int               `json:"eventCount"`
	TotalHours        float64           `json:"totalHours"`
	TotalDays         float64           `json:"totalDays"`
	OnSiteHours       float64           `json:"onSiteHours"`
	RemoteHours       float64           `json:"remoteHours"`
	OnSiteShare       float64           `json:"onSiteShare"`
	RemoteShare       float64           `json:"remoteShare"`
	OnSiteDays        int               `json:"onSiteDays"`
	RemoteDays        int               `json:"remoteDays"`
	TotalRevenue      float64           `json:"totalRevenue"`
	Revenue           []revenueResponse `json:"revenue"`
	WorkedDays        int               `json:"workedDays"`
	AvailableWeekdays int               `json:"availableWeekdays"`
	Productivity      float64           `json:"productivity"`
}

func newStatsResponse(s *service.MonthSummary) statsResponse {
	resp := statsResponse{
		Month:             s.Month.String(),
		EventCount:        s.Totals.EventCount,
		TotalHours:        s.Totals.TotalHours,
		TotalDays:         s.Totals.TotalDays,
		OnSiteHours:       s.Totals.OnSiteHours,
		RemoteHours:       s.Totals.RemoteHours,
		OnSiteShare:       s.Totals.OnSiteShare(),
		RemoteShare:       s.Totals.RemoteShare(),
		OnSiteDays:        s.OnSiteDays,
		RemoteDays:        s.RemoteDays,
		TotalRevenue:      s.TotalRevenue,
		Revenue:           make([]revenueResponse, 0, len(s.Revenue)),
		WorkedDays:        s.Productivity.WorkedDays,
		AvailableWeekdays: s.Productivity.AvailableWeekdays,
		Productivity:      s.Productivity.Ratio,
	}
	for _, r := range s.Revenue {
		resp.Revenue = append(resp.Revenue, revenueResponse(r))
	}
	return resp
}

type markerResponse struct {
	EventID     string  `json:"eventId"`
	ClientID    string  `json:"clientId"`
	ClientName  string  `json:"clientName"`
	Color       string  `json:"color"`
	ClientKnown bool    `json:"clientKnown"`
	Hours       float64 `json:"hours"`
	Mode        string  `json:"mode"`
}

type dayResponse struct {
	Date    string           `json:"date"`
	InMonth bool             `json:"inMonth"`
	Markers []markerResponse `json:"markers"`
}

func newDayResponse(d service.CalendarDay) dayResponse {
	resp := dayResponse{
		Date:    d.Key(),
		InMonth: d.InMonth,
		Markers: make([]markerResponse, 0, len(d.Markers)),
	}
	for _, m := range d.Markers {
		resp.Markers = append(resp.Markers, markerResponse{
			EventID:     m.EventID,
			ClientID:    m.Client.ID,
			ClientName:  m.Client.Name,
			Color:       m.Client.Color,
			ClientKnown: m.Client.Known,
			Hours:       m.Hours,
			Mode:        string(m.Mode),
		})
	}
	return resp
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Reply     string `json:"reply"`
	Responder string `json:"responder"`
}

type importResponse struct {
	Clients int `json:"clients"`
	Events  int `json:"events"`
}

type calendarImportResponse struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}
