package service

import (
	"context"

	"github.com/andy/workcal/internal/domain"
	"github.com/andy/workcal/internal/repository"
)

// MonthSummary provides the monthly statistics panel
type MonthSummary struct {
	Month        domain.YearMonth
	Totals       MonthTotals
	Revenue      []ClientRevenue
	TotalRevenue float64
	Productivity Productivity
	OnSiteDays   int // distinct dates with an on-site session
	RemoteDays   int // distinct dates with a remote session
}

// ClientOverview is one row of the client manager
type ClientOverview struct {
	Client      domain.Client
	Stats       ClientStats
	Progress    float64
	HasProgress bool
}

// DayDetail lists one date's sessions with their clients resolved
type DayDetail struct {
	Date   string
	Events []domain.CalendarEvent
	Refs   []ClientRef
	Hours  float64
}

// ReportService provides aggregations and analytics
type ReportService interface {
	// MonthSummary bundles totals, revenue, productivity and worked-day counts
	MonthSummary(ctx context.Context, ym domain.YearMonth) *MonthSummary

	// ClientOverview lists every client with all-time stats and contract progress
	ClientOverview(ctx context.Context) []ClientOverview

	// Calendar returns the Monday-first grid of the month
	Calendar(ctx context.Context, ym domain.YearMonth) []CalendarDay

	// Day lists the sessions of one date
	Day(ctx context.Context, date string) *DayDetail
}

type reportService struct {
	repo repository.Repository
}

// NewReportService creates a new report service
func NewReportService(repo repository.Repository) ReportService {
	return &reportService{repo: repo}
}

func (s *reportService) MonthSummary(ctx context.Context, ym domain.YearMonth) *MonthSummary {
	clients, events := s.repo.Snapshot()

	revenue := ComputeClientRevenue(clients, events, ym)
	summary := &MonthSummary{
		Month:        ym,
		Totals:       ComputeMonthTotals(events, ym),
		Revenue:      revenue,
		TotalRevenue: TotalRevenue(revenue),
		Productivity: ComputeProductivity(events, ym),
	}

	onSite := make(map[string]struct{})
	remote := make(map[string]struct{})
	for _, e := range events {
		if !ym.Contains(e.Date) {
			continue
		}
		if e.Mode == domain.WorkModeRemoteWork {
			remote[e.Date] = struct{}{}
		} else {
			onSite[e.Date] = struct{}{}
		}
	}
	summary.OnSiteDays = len(onSite)
	summary.RemoteDays = len(remote)

	return summary
}

func (s *reportService) ClientOverview(ctx context.Context) []ClientOverview {
	clients, events := s.repo.Snapshot()

	rows := make([]ClientOverview, 0, len(clients))
	for _, c := range clients {
		progress, ok := ContractProgress(c, events)
		rows = append(rows, ClientOverview{
			Client:      c,
			Stats:       ComputeClientStats(c.ID, events),
			Progress:    progress,
			HasProgress: ok,
		})
	}
	return rows
}

func (s *reportService) Calendar(ctx context.Context, ym domain.YearMonth) []CalendarDay {
	clients, events := s.repo.Snapshot()
	return BuildCalendarGrid(clients, events, ym)
}

func (s *reportService) Day(ctx context.Context, date string) *DayDetail {
	clients := s.repo.ListClients()
	events := s.repo.FindEventsOn(date)

	detail := &DayDetail{
		Date:   date,
		Events: events,
		Refs:   make([]ClientRef, 0, len(events)),
	}
	for _, e := range events {
		detail.Refs = append(detail.Refs, ResolveClient(clients, e.ClientID))
		detail.Hours += e.Hours
	}
	return detail
}
