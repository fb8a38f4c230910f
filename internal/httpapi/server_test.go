package httpapi

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"github.com/andy/workcal/internal/assistant"
	"github.com/andy/workcal/internal/domain"
	"github.com/andy/workcal/internal/repository"
	"github.com/andy/workcal/internal/service"
)

func newTestServer(t *testing.T) (*Server, *repository.Repo) {
	t.Helper()
	ctx := context.Background()
	repo, err := repository.Open(ctx, repository.NewMemoryKV(), nil)
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	err = repo.ReplaceAll(ctx,
		[]domain.Client{{ID: "c1", Name: "Acme", Type: domain.ClientTypeCompany, DailyRate: 350, TotalDaysContracted: 4, Color: "#0ea5e9"}},
		[]domain.CalendarEvent{
			{ID: "e1", ClientID: "c1", Date: "2024-03-05", Hours: 16, Mode: domain.WorkModeOnSite},
			{ID: "e2", ClientID: "gone", Date: "2024-03-06", Hours: 8, Mode: domain.WorkModeRemoteWork},
		},
	)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	snapshot := func() assistant.Snapshot {
		clients, events := repo.Snapshot()
		return assistant.BuildSnapshot(clients, events, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))
	}
	srv := New(Services{
		Clients:  service.NewClientService(repo),
		Events:   service.NewEventService(repo),
		Reports:  service.NewReportService(repo),
		Backup:   service.NewBackupService(repo),
		Calendar: service.NewCalendarExportService(repo),
		Chat:     assistant.NewConversation(assistant.NewRuleResponder(), snapshot, nil),
	}, nil)
	srv.now = func() time.Time { return time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC) }
	return srv, repo
}

func do(s *Server, method, uri, body string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if body != "" {
		req.SetBodyString(body)
	}
	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	s.Handler(&ctx)
	return &ctx
}

func decode(t *testing.T, ctx *fasthttp.RequestCtx, v any) {
	t.Helper()
	if err := json.Unmarshal(ctx.Response.Body(), v); err != nil {
		t.Fatalf("decode %s: %v", ctx.Response.Body(), err)
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := do(s, "GET", "/health", "")
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("expected 200, got %d", ctx.Response.StatusCode())
	}
}

func TestStatsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := do(s, "GET", "/api/stats?month=2024-03", "")
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("expected 200, got %d: %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	var stats statsResponse
	decode(t, ctx, &stats)
	if stats.TotalHours != 24 || stats.TotalDays != 3 {
		t.Fatalf("unexpected totals %+v", stats)
	}
	if stats.TotalRevenue != 700 || len(stats.Revenue) != 1 {
		t.Fatalf("expected only Acme billed at 700, got %+v", stats.Revenue)
	}
	if stats.RemoteHours != 8 {
		t.Fatalf("expected 8 remote hours, got %v", stats.RemoteHours)
	}
}

func TestStatsRejectsBadMonth(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := do(s, "GET", "/api/stats?month=march", "")
	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("expected 400, got %d", ctx.Response.StatusCode())
	}
	var e ErrorResponse
	decode(t, ctx, &e)
	if e.Status != 400 || e.Message == "" {
		t.Fatalf("unexpected error body %+v", e)
	}
}

func TestClientsEndpoint(t *testing.T) {
	s, repo := newTestServer(t)

	ctx := do(s, "GET", "/api/clients", "")
	var clients []clientResponse
	decode(t, ctx, &clients)
	if len(clients) != 1 || clients[0].Progress == nil || *clients[0].Progress != 50 {
		t.Fatalf("unexpected clients %+v", clients)
	}

	ctx = do(s, "POST", "/api/clients", `{"name":""}`)
	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("expected 400 for invalid client, got %d", ctx.Response.StatusCode())
	}

	ctx = do(s, "POST", "/api/clients", `{"name":"Rossi","type":"PIVA","vatNumber":"IT1","dailyRate":300}`)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("expected 200, got %d: %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	if len(repo.ListClients()) != 2 {
		t.Fatalf("expected client saved")
	}

	ctx = do(s, "DELETE", "/api/clients?id=c1", "")
	if ctx.Response.StatusCode() != fasthttp.StatusNoContent {
		t.Fatalf("expected 204, got %d", ctx.Response.StatusCode())
	}
	ctx = do(s, "DELETE", "/api/clients?id=c1", "")
	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("expected 404, got %d", ctx.Response.StatusCode())
	}
}

func TestEventsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	ctx := do(s, "GET", "/api/events?date=2024-03-06", "")
	var events []eventResponse
	decode(t, ctx, &events)
	if len(events) != 1 || events[0].ClientKnown || events[0].ClientName != service.UnknownClientName {
		t.Fatalf("expected dangling event with unknown client, got %+v", events)
	}

	ctx = do(s, "GET", "/api/events?date=06-03-2024", "")
	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("expected 400, got %d", ctx.Response.StatusCode())
	}

	ctx = do(s, "POST", "/api/events", `{"clientId":"c1"}`)
	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("expected 400 for missing date, got %d", ctx.Response.StatusCode())
	}

	ctx = do(s, "POST", "/api/events", `{"clientId":"c1","date":"2024-03-07","mode":"remote"}`)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("expected 200, got %d: %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	var saved domain.CalendarEvent
	decode(t, ctx, &saved)
	if saved.Hours != 8 || saved.Mode != domain.WorkModeRemoteWork {
		t.Fatalf("unexpected saved event %+v", saved)
	}

	ctx = do(s, "GET", "/api/events?month=2024-03", "")
	decode(t, ctx, &events)
	if len(events) != 3 {
		t.Fatalf("expected 3 March events, got %d", len(events))
	}
}

func TestCalendarEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := do(s, "GET", "/api/calendar", "")
	var days []dayResponse
	decode(t, ctx, &days)
	if len(days) != 35 || days[0].Date != "2024-02-26" {
		t.Fatalf("expected March 2024 grid from the current month, got %d cells starting %s", len(days), days[0].Date)
	}
}

func TestExportICSEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := do(s, "GET", "/api/export/ics?month=2024-03", "")
	if ct := string(ctx.Response.Header.ContentType()); !strings.HasPrefix(ct, "text/calendar") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := string(ctx.Response.Header.Peek("Content-Disposition")); !strings.Contains(cd, "calendar_March_2024.ics") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	body := string(ctx.Response.Body())
	if strings.Count(body, "BEGIN:VEVENT") != 2 || !strings.Contains(body, "SUMMARY:Work") {
		t.Fatalf("unexpected calendar body:\n%s", body)
	}
}

func TestImportICSEndpoint(t *testing.T) {
	s, repo := newTestServer(t)

	cal := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\nBEGIN:VEVENT\r\nUID:ext-1\r\nDTSTAMP:20240301T090000Z\r\nDTSTART;VALUE=DATE:20240311\r\nSUMMARY:Workshop\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n"
	ctx := do(s, "POST", "/api/import/ics?client=c1", cal)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("expected 200, got %d: %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	var result calendarImportResponse
	decode(t, ctx, &result)
	if result.Added != 1 || len(repo.FindEventsOn("2024-03-11")) != 1 {
		t.Fatalf("unexpected import %+v", result)
	}

	if ctx := do(s, "POST", "/api/import/ics", cal); ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("expected 400 without client, got %d", ctx.Response.StatusCode())
	}
	if ctx := do(s, "POST", "/api/import/ics?client=c1", "garbage"); ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("expected 400 for bad calendar, got %d", ctx.Response.StatusCode())
	}
	if ctx := do(s, "POST", "/api/import/ics?client=nobody", cal); ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("expected 404 for unknown client, got %d", ctx.Response.StatusCode())
	}
}

func TestBackupEndpoints(t *testing.T) {
	s, repo := newTestServer(t)

	ctx := do(s, "GET", "/api/backup", "")
	if cd := string(ctx.Response.Header.Peek("Content-Disposition")); !strings.Contains(cd, "backup_20240320.json") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	backup := string(ctx.Response.Body())

	ctx = do(s, "POST", "/api/backup", `{"clients":[]}`)
	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("expected 400 for partial backup, got %d", ctx.Response.StatusCode())
	}
	if len(repo.ListEvents()) != 2 {
		t.Fatalf("rejected import must not mutate state")
	}

	ctx = do(s, "POST", "/api/backup", `{"clients":[],"events":[]}`)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("expected 200, got %d", ctx.Response.StatusCode())
	}
	if len(repo.ListClients()) != 0 || len(repo.ListEvents()) != 0 {
		t.Fatalf("expected empty collections after import")
	}

	ctx = do(s, "POST", "/api/backup", backup)
	var counts importResponse
	decode(t, ctx, &counts)
	if counts.Clients != 1 || counts.Events != 2 {
		t.Fatalf("unexpected import counts %+v", counts)
	}
}

func TestAskEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	ctx := do(s, "POST", "/api/ask", `{"question":"how many hours this month?"}`)
	var resp askResponse
	decode(t, ctx, &resp)
	if !strings.Contains(resp.Reply, "24 hours") || resp.Responder != "local" {
		t.Fatalf("unexpected reply %+v", resp)
	}

	ctx = do(s, "POST", "/api/ask", `{"question":"  "}`)
	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("expected 400 for empty question, got %d", ctx.Response.StatusCode())
	}
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := do(s, "GET", "/nope", "")
	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("expected 404, got %d", ctx.Response.StatusCode())
	}
}
