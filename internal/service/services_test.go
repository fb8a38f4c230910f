package service

import (
	"bytes"
	"context"
	"errors"
	"math"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/andy/workcal/internal/domain"
	"github.com/andy/workcal/internal/ics"
	"github.com/andy/workcal/internal/repository"
)

func newTestRepo(t *testing.T, clients []domain.Client, events []domain.CalendarEvent) (*repository.Repo, *repository.MemoryKV) {
	t.Helper()
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	repo, err := repository.Open(ctx, kv, nil)
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	if clients != nil || events != nil {
		if err := repo.ReplaceAll(ctx, clients, events); err != nil {
			t.Fatalf("seed repo: %v", err)
		}
	}
	return repo, kv
}

func TestClientServiceSaveNew(t *testing.T) {
	repo, _ := newTestRepo(t, []domain.Client{}, []domain.CalendarEvent{})
	svc := NewClientService(repo)

	c, err := svc.Save(context.Background(), ClientInput{Name: " Acme ", DailyRate: 400, VATNumber: "IT1"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if c.ID == "" {
		t.Fatalf("expected generated id")
	}
	if c.Type != domain.ClientTypeCompany {
		t.Fatalf("expected Company default, got %q", c.Type)
	}
	if !slices.Contains(domain.Palette, c.Color) {
		t.Fatalf("expected palette color, got %q", c.Color)
	}
	if c.VATNumber != "" {
		t.Fatalf("companies carry no VAT number, got %q", c.VATNumber)
	}
	if got := svc.List(context.Background()); len(got) != 1 || got[0].Name != "Acme" {
		t.Fatalf("unexpected list %+v", got)
	}
}

func TestClientServiceRejectsInvalidInput(t *testing.T) {
	repo, kv := newTestRepo(t, []domain.Client{}, []domain.CalendarEvent{})
	svc := NewClientService(repo)
	writes := kv.Writes()

	inputs := []ClientInput{
		{Name: "", DailyRate: 300},
		{Name: "Acme", DailyRate: 0},
		{Name: "Acme", DailyRate: 300, Type: "charity"},
		{Name: "Acme", DailyRate: math.NaN()},
		{Name: "Acme", DailyRate: math.Inf(1)},
		{Name: "Acme", DailyRate: 300, TotalDaysContracted: math.NaN()},
		{Name: "Acme", DailyRate: 300, TotalDaysContracted: math.Inf(1)},
		{Name: "Acme", DailyRate: 300, TotalContractValue: math.Inf(-1)},
	}
	for _, in := range inputs {
		if _, err := svc.Save(context.Background(), in); !errors.Is(err, ErrInvalidClient) {
			t.Fatalf("expected ErrInvalidClient for %+v, got %v", in, err)
		}
	}
	if kv.Writes() != writes {
		t.Fatalf("invalid input must not write")
	}
	if len(repo.ListClients()) != 0 {
		t.Fatalf("invalid input must not add clients")
	}
}

func TestClientServiceEditKeepsColor(t *testing.T) {
	repo, _ := newTestRepo(t, []domain.Client{{ID: "c1", Name: "Old", DailyRate: 1, Color: "#123456"}}, nil)
	svc := NewClientService(repo)

	c, err := svc.Save(context.Background(), ClientInput{ID: "c1", Name: "New", DailyRate: 500, Type: "SoleProprietor", VATNumber: "IT9"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if c.Color != "#123456" {
		t.Fatalf("expected color kept, got %q", c.Color)
	}
	got, _ := repo.GetClient("c1")
	if got.Name != "New" || got.DailyRate != 500 || got.VATNumber != "IT9" {
		t.Fatalf("unexpected stored client %+v", got)
	}
	if len(repo.ListClients()) != 1 {
		t.Fatalf("edit must not grow the list")
	}
}

func TestClientServiceDeleteAndFind(t *testing.T) {
	repo, _ := newTestRepo(t,
		[]domain.Client{{ID: "c1", Name: "Acme", DailyRate: 1}},
		[]domain.CalendarEvent{{ID: "e1", ClientID: "c1", Date: "2024-03-05", Hours: 8}},
	)
	svc := NewClientService(repo)
	ctx := context.Background()

	if c, err := svc.Find(ctx, "acme"); err != nil || c.ID != "c1" {
		t.Fatalf("expected name lookup to find c1, got %+v %v", c, err)
	}
	if err := svc.Delete(ctx, "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, "c1"); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
	if len(repo.ListEvents()) != 1 {
		t.Fatalf("deleting a client must keep its events")
	}
}

func TestEventServiceDefaultsAndValidation(t *testing.T) {
	repo, kv := newTestRepo(t, []domain.Client{{ID: "c1", Name: "Acme", DailyRate: 1}}, []domain.CalendarEvent{})
	svc := NewEventService(repo)
	ctx := context.Background()

	e, err := svc.Save(ctx, EventInput{ClientID: "c1", Date: "2024-03-05"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if e.ID == "" || e.Hours != 8 || e.Mode != domain.WorkModeOnSite || !e.IsFullDay {
		t.Fatalf("defaults not applied: %+v", e)
	}

	writes := kv.Writes()
	for _, in := range []EventInput{
		{Date: "2024-03-05"},
		{ClientID: "c1"},
		{ClientID: "c1", Date: "2024-13-40"},
		{ClientID: "c1", Date: "2024-03-05", Hours: -1},
		{ClientID: "c1", Date: "2024-03-05", Hours: math.NaN()},
		{ClientID: "c1", Date: "2024-03-05", Hours: math.Inf(1)},
		{ClientID: "c1", Date: "2024-03-05", Mode: "hybrid"},
	} {
		if _, err := svc.Save(ctx, in); !errors.Is(err, ErrInvalidEvent) {
			t.Fatalf("expected ErrInvalidEvent for %+v, got %v", in, err)
		}
	}
	if kv.Writes() != writes {
		t.Fatalf("invalid input must not write")
	}
	if len(repo.ListEvents()) != 1 {
		t.Fatalf("invalid input must not add events")
	}
}

func TestEventServiceQueries(t *testing.T) {
	repo, _ := newTestRepo(t, []domain.Client{}, []domain.CalendarEvent{
		{ID: "e2", ClientID: "c1", Date: "2024-03-20", Hours: 8},
		{ID: "e1", ClientID: "c1", Date: "2024-03-05", Hours: 8},
		{ID: "e3", ClientID: "c2", Date: "2024-04-01", Hours: 8},
	})
	svc := NewEventService(repo)
	ctx := context.Background()

	month := svc.Month(ctx, march2024())
	if len(month) != 2 || month[0].ID != "e1" || month[1].ID != "e2" {
		t.Fatalf("expected March events sorted by date, got %+v", month)
	}
	if got := svc.Day(ctx, "2024-04-01"); len(got) != 1 || got[0].ID != "e3" {
		t.Fatalf("unexpected day events %+v", got)
	}
	if got := svc.ForClient(ctx, "c1"); len(got) != 2 {
		t.Fatalf("expected 2 events for c1, got %d", len(got))
	}
	if err := svc.Delete(ctx, "missing"); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "e3"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(svc.List(ctx)) != 2 {
		t.Fatalf("expected 2 events left")
	}
}

func TestReportServiceMonthSummary(t *testing.T) {
	repo, _ := newTestRepo(t,
		[]domain.Client{{ID: "c1", Name: "Acme", DailyRate: 350, TotalDaysContracted: 4}},
		[]domain.CalendarEvent{
			{ID: "e1", ClientID: "c1", Date: "2024-03-05", Hours: 16, Mode: domain.WorkModeOnSite},
			{ID: "e2", ClientID: "c1", Date: "2024-03-06", Hours: 4, Mode: domain.WorkModeRemoteWork},
			{ID: "e3", ClientID: "c1", Date: "2024-03-06", Hours: 4, Mode: domain.WorkModeOnSite},
		},
	)
	svc := NewReportService(repo)
	ctx := context.Background()

	s := svc.MonthSummary(ctx, march2024())
	if s.Totals.TotalHours != 24 || s.TotalRevenue != 1050 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.OnSiteDays != 2 || s.RemoteDays != 1 {
		t.Fatalf("unexpected day counts on-site=%d remote=%d", s.OnSiteDays, s.RemoteDays)
	}
	if s.Productivity.WorkedDays != 2 {
		t.Fatalf("expected 2 worked days, got %d", s.Productivity.WorkedDays)
	}

	overview := svc.ClientOverview(ctx)
	if len(overview) != 1 || !overview[0].HasProgress || overview[0].Progress != 75 {
		t.Fatalf("unexpected overview %+v", overview)
	}

	day := svc.Day(ctx, "2024-03-06")
	if len(day.Events) != 2 || day.Hours != 8 || day.Refs[0].Name != "Acme" {
		t.Fatalf("unexpected day detail %+v", day)
	}
}

func TestStatementServiceBuild(t *testing.T) {
	repo, _ := newTestRepo(t,
		[]domain.Client{{ID: "c1", Name: "Acme", DailyRate: 350}},
		[]domain.CalendarEvent{
			{ID: "e2", ClientID: "c1", Date: "2024-03-07", Hours: 8},
			{ID: "e1", ClientID: "c1", Date: "2024-03-05", Hours: 16},
			{ID: "e3", ClientID: "c1", Date: "2024-04-01", Hours: 8},
			{ID: "e4", ClientID: "c2", Date: "2024-03-05", Hours: 8},
		},
	)
	svc := NewStatementService(repo, 0.22, "€")

	st, err := svc.Build(context.Background(), "c1", march2024())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(st.Lines) != 2 || st.Lines[0].EventID != "e1" {
		t.Fatalf("expected 2 March lines ordered by date, got %+v", st.Lines)
	}
	if st.Lines[0].Amount != 700 {
		t.Fatalf("expected first line 700, got %v", st.Lines[0].Amount)
	}
	if st.Subtotal != 1050 || !approx(st.TaxAmount, 231) || !approx(st.Total, 1281) {
		t.Fatalf("unexpected totals %v %v %v", st.Subtotal, st.TaxAmount, st.Total)
	}
	if st.TotalHours() != 24 {
		t.Fatalf("expected 24 hours, got %v", st.TotalHours())
	}

	if _, err := svc.Build(context.Background(), "nope", march2024()); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestBackupRoundTrip(t *testing.T) {
	clients := []domain.Client{
		{ID: "c1", Name: "Acme", Type: domain.ClientTypeCompany, DailyRate: 350, TotalDaysContracted: 20, Color: "#0ea5e9"},
		{ID: "c2", Name: "Rossi", Type: domain.ClientTypeSoleProprietor, VATNumber: "IT1", DailyRate: 280.5, Color: "#ec4899"},
	}
	events := []domain.CalendarEvent{
		{ID: "e1", ClientID: "c1", Date: "2024-03-05", Hours: 16, Mode: domain.WorkModeOnSite, IsFullDay: true},
		{ID: "e2", ClientID: "c2", Date: "2024-03-06", Hours: 3.5, Mode: domain.WorkModeRemoteWork, Notes: "call", StartTime: "09:00", EndTime: "12:30"},
	}
	source, _ := newTestRepo(t, clients, events)

	var buf bytes.Buffer
	if err := NewBackupService(source).Export(context.Background(), &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	target, _ := newTestRepo(t, nil, nil)
	if _, err := NewBackupService(target).Import(context.Background(), &buf); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !reflect.DeepEqual(target.ListClients(), clients) {
		t.Fatalf("clients differ after round trip:\n%+v\n%+v", target.ListClients(), clients)
	}
	if !reflect.DeepEqual(target.ListEvents(), events) {
		t.Fatalf("events differ after round trip:\n%+v\n%+v", target.ListEvents(), events)
	}
}

func TestBackupImportRejectsPartialFile(t *testing.T) {
	repo, kv := newTestRepo(t, nil, nil)
	svc := NewBackupService(repo)
	before := repo.ListClients()
	writes := kv.Writes()

	for _, body := range []string{
		`{"clients":[{"id":"x","name":"X","dailyRate":1}]}`,
		`{"events":[]}`,
		`not json`,
	} {
		if _, err := svc.Import(context.Background(), strings.NewReader(body)); !errors.Is(err, ErrInvalidBackup) {
			t.Fatalf("expected ErrInvalidBackup for %q, got %v", body, err)
		}
	}
	if kv.Writes() != writes {
		t.Fatalf("rejected import must not write")
	}
	if !reflect.DeepEqual(repo.ListClients(), before) {
		t.Fatalf("rejected import must not mutate clients")
	}
}

func TestBackupFilename(t *testing.T) {
	svc := NewBackupService(nil)
	if got := svc.Filename(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)); got != "backup_20240305.json" {
		t.Fatalf("unexpected filename %q", got)
	}
}

func TestCalendarExport(t *testing.T) {
	repo, _ := newTestRepo(t,
		[]domain.Client{{ID: "c1", Name: "Acme", DailyRate: 1}},
		[]domain.CalendarEvent{
			{ID: "e1", ClientID: "c1", Date: "2024-03-05", Hours: 8},
			{ID: "e2", ClientID: "deleted", Date: "2024-03-06", Hours: 8},
			{ID: "e3", ClientID: "c1", Date: "2024-04-01", Hours: 8},
		},
	)
	svc := NewCalendarExportService(repo)

	var buf bytes.Buffer
	n, err := svc.Export(context.Background(), march2024(), &buf)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 exported events, got %d", n)
	}

	parsed, err := ics.Parse(&buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 VEVENTs, got %d", len(parsed))
	}
	if parsed[0].UID != "e1" || parsed[0].Summary != "Acme" || parsed[0].Start != "20240305" || !parsed[0].AllDay {
		t.Fatalf("unexpected first event %+v", parsed[0])
	}
	if parsed[1].Summary != ics.FallbackSummary {
		t.Fatalf("expected fallback summary, got %q", parsed[1].Summary)
	}
	if got := svc.Filename(march2024()); got != "calendar_March_2024.ics" {
		t.Fatalf("unexpected filename %q", got)
	}
}

const importCalendar = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:ext-1
DTSTAMP:20240301T090000Z
DTSTART;VALUE=DATE:20240311
DTEND;VALUE=DATE:20240312
SUMMARY:Workshop
END:VEVENT
BEGIN:VEVENT
UID:ext-2
DTSTAMP:20240301T090000Z
DTSTART:20240312T090000Z
DTEND:20240312T133000Z
SUMMARY:Call
DESCRIPTION:quarterly review
END:VEVENT
BEGIN:VEVENT
UID:e1
DTSTAMP:20240301T090000Z
DTSTART;VALUE=DATE:20240305
SUMMARY:Acme
END:VEVENT
BEGIN:VEVENT
UID:ext-3
DTSTAMP:20240301T090000Z
DTSTART:garbage
SUMMARY:Broken
END:VEVENT
END:VCALENDAR
`

func TestCalendarImport(t *testing.T) {
	repo, _ := newTestRepo(t,
		[]domain.Client{{ID: "c1", Name: "Acme", DailyRate: 1}},
		[]domain.CalendarEvent{{ID: "e1", ClientID: "c1", Date: "2024-03-05", Hours: 8}},
	)
	svc := NewCalendarExportService(repo)
	ctx := context.Background()

	result, err := svc.Import(ctx, "c1", strings.NewReader(importCalendar))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Added != 2 || result.Skipped != 2 {
		t.Fatalf("expected 2 added and 2 skipped, got %+v", result)
	}

	day := repo.FindEventsOn("2024-03-11")
	if len(day) != 1 || day[0].ID != "ext-1" || day[0].Hours != 8 || !day[0].IsFullDay || day[0].Notes != "Workshop" {
		t.Fatalf("unexpected all-day import %+v", day)
	}
	timed := repo.FindEventsOn("2024-03-12")
	if len(timed) != 1 || timed[0].Hours != 4.5 || timed[0].IsFullDay || timed[0].StartTime != "09:00" || timed[0].EndTime != "13:30" {
		t.Fatalf("unexpected timed import %+v", timed)
	}
	if timed[0].Notes != "quarterly review" || timed[0].Mode != domain.WorkModeOnSite {
		t.Fatalf("unexpected timed import %+v", timed[0])
	}

	again, err := svc.Import(ctx, "c1", strings.NewReader(importCalendar))
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if again.Added != 0 || len(repo.ListEvents()) != 3 {
		t.Fatalf("re-import must not duplicate, got %+v with %d events", again, len(repo.ListEvents()))
	}
}

func TestCalendarImportErrors(t *testing.T) {
	repo, kv := newTestRepo(t, []domain.Client{{ID: "c1", Name: "Acme", DailyRate: 1}}, []domain.CalendarEvent{})
	svc := NewCalendarExportService(repo)
	writes := kv.Writes()

	if _, err := svc.Import(context.Background(), "nobody", strings.NewReader(importCalendar)); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
	if _, err := svc.Import(context.Background(), "c1", strings.NewReader("not a calendar")); !errors.Is(err, ErrInvalidCalendar) {
		t.Fatalf("expected ErrInvalidCalendar, got %v", err)
	}
	if kv.Writes() != writes {
		t.Fatalf("failed import must not write")
	}
}

func TestCalendarExportImportRoundTrip(t *testing.T) {
	source, _ := newTestRepo(t,
		[]domain.Client{{ID: "c1", Name: "Acme", DailyRate: 1}},
		[]domain.CalendarEvent{
			{ID: "e1", ClientID: "c1", Date: "2024-03-05", Hours: 8, Notes: "kickoff"},
			{ID: "e2", ClientID: "c1", Date: "2024-03-06", Hours: 8},
		},
	)
	var buf bytes.Buffer
	if _, err := NewCalendarExportService(source).Export(context.Background(), march2024(), &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	target, _ := newTestRepo(t, []domain.Client{{ID: "c9", Name: "Other", DailyRate: 1}}, []domain.CalendarEvent{})
	result, err := NewCalendarExportService(target).Import(context.Background(), "c9", &buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Added != 2 {
		t.Fatalf("expected 2 imported, got %+v", result)
	}
	got := target.FindEventsOn("2024-03-05")
	if len(got) != 1 || got[0].ID != "e1" || got[0].ClientID != "c9" || got[0].Notes != "kickoff" {
		t.Fatalf("unexpected round trip %+v", got)
	}
}
