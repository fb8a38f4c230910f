package httpapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"github.com/andy/workcal/internal/assistant"
	"github.com/andy/workcal/internal/domain"
	applog "github.com/andy/workcal/internal/log"
	"github.com/andy/workcal/internal/service"
)

// Services are the use cases the API exposes
type Services struct {
	Clients  service.ClientService
	Events   service.EventService
	Reports  service.ReportService
	Backup   service.BackupService
	Calendar service.CalendarExportService
	Chat     *assistant.Conversation
}

// Server is the JSON API
type Server struct {
	svc    Services
	logger *applog.Logger
	now    func() time.Time
}

// New creates a new API server
func New(svc Services, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Server{svc: svc, logger: logger, now: time.Now}
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &fasthttp.Server{
		Handler:            s.Handler,
		Name:               "workcal",
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       60 * time.Second,
		MaxRequestBodySize: 16 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		errCh <- srv.ListenAndServe(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("api shutting down")
		return srv.Shutdown()
	}
}

// Handler routes a request
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	path := string(ctx.Path())
	method := string(ctx.Method())

	switch {
	case path == "/health":
		s.writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
	case path == "/api/clients":
		s.routeClients(ctx, method)
	case path == "/api/events":
		s.routeEvents(ctx, method)
	case path == "/api/stats" && method == fasthttp.MethodGet:
		s.handleStats(ctx)
	case path == "/api/calendar" && method == fasthttp.MethodGet:
		s.handleCalendar(ctx)
	case path == "/api/export/ics" && method == fasthttp.MethodGet:
		s.handleExportICS(ctx)
	case path == "/api/import/ics" && method == fasthttp.MethodPost:
		s.handleImportICS(ctx)
	case path == "/api/backup" && method == fasthttp.MethodGet:
		s.handleBackupExport(ctx)
	case path == "/api/backup" && method == fasthttp.MethodPost:
		s.handleBackupImport(ctx)
	case path == "/api/ask" && method == fasthttp.MethodPost:
		s.handleAsk(ctx)
	default:
		s.writeError(ctx, fasthttp.StatusNotFound, "Not found")
	}

	s.logger.Debug("request", "method", method, "path", path,
		"status", ctx.Response.StatusCode(), "duration", time.Since(start))
}

func (s *Server) routeClients(ctx *fasthttp.RequestCtx, method string) {
	switch method {
	case fasthttp.MethodGet:
		overview := s.svc.Reports.ClientOverview(ctx)
		resp := make([]clientResponse, 0, len(overview))
		for _, o := range overview {
			resp = append(resp, newClientResponse(o))
		}
		s.writeJSON(ctx, fasthttp.StatusOK, resp)

	case fasthttp.MethodPost:
		var req clientRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			s.writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
		client, err := s.svc.Clients.Save(ctx, req.input())
		if err != nil {
			s.writeServiceError(ctx, err)
			return
		}
		s.writeJSON(ctx, fasthttp.StatusOK, client)

	case fasthttp.MethodDelete:
		id := string(ctx.QueryArgs().Peek("id"))
		if id == "" {
			s.writeError(ctx, fasthttp.StatusBadRequest, "id is required")
			return
		}
		if err := s.svc.Clients.Delete(ctx, id); err != nil {
			s.writeServiceError(ctx, err)
			return
		}
		ctx.SetStatusCode(fasthttp.StatusNoContent)

	default:
		s.writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) routeEvents(ctx *fasthttp.RequestCtx, method string) {
	switch method {
	case fasthttp.MethodGet:
		s.handleListEvents(ctx)

	case fasthttp.MethodPost:
		var req eventRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			s.writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
		event, err := s.svc.Events.Save(ctx, req.input())
		if err != nil {
			s.writeServiceError(ctx, err)
			return
		}
		s.writeJSON(ctx, fasthttp.StatusOK, event)

	case fasthttp.MethodDelete:
		id := string(ctx.QueryArgs().Peek("id"))
		if id == "" {
			s.writeError(ctx, fasthttp.StatusBadRequest, "id is required")
			return
		}
		if err := s.svc.Events.Delete(ctx, id); err != nil {
			s.writeServiceError(ctx, err)
			return
		}
		ctx.SetStatusCode(fasthttp.StatusNoContent)

	default:
		s.writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleListEvents(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	var events []domain.CalendarEvent

	switch {
	case args.Has("date"):
		date := string(args.Peek("date"))
		if _, err := domain.ParseDate(date); err != nil {
			s.writeError(ctx, fasthttp.StatusBadRequest, fmt.Sprintf("invalid date %q (want YYYY-MM-DD)", date))
			return
		}
		events = s.svc.Events.Day(ctx, date)
	case args.Has("client"):
		events = s.svc.Events.ForClient(ctx, string(args.Peek("client")))
	case args.Has("month"):
		ym, ok := s.month(ctx)
		if !ok {
			return
		}
		events = s.svc.Events.Month(ctx, ym)
	default:
		events = s.svc.Events.List(ctx)
	}

	clients := s.svc.Clients.List(ctx)
	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		ref := service.ResolveClient(clients, e.ClientID)
		resp = append(resp, eventResponse{CalendarEvent: e, ClientName: ref.Name, ClientKnown: ref.Known})
	}
	s.writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Server) handleStats(ctx *fasthttp.RequestCtx) {
	ym, ok := s.month(ctx)
	if !ok {
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, newStatsResponse(s.svc.Reports.MonthSummary(ctx, ym)))
}

func (s *Server) handleCalendar(ctx *fasthttp.RequestCtx) {
	ym, ok := s.month(ctx)
	if !ok {
		return
	}
	grid := s.svc.Reports.Calendar(ctx, ym)
	resp := make([]dayResponse, 0, len(grid))
	for _, d := range grid {
		resp = append(resp, newDayResponse(d))
	}
	s.writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Server) handleExportICS(ctx *fasthttp.RequestCtx) {
	ym, ok := s.month(ctx)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if _, err := s.svc.Calendar.Export(ctx, ym, &buf); err != nil {
		s.logger.Error("calendar export failed", "month", ym.String(), "error", err)
		s.writeError(ctx, fasthttp.StatusInternalServerError, "Calendar export failed")
		return
	}
	s.writeAttachment(ctx, "text/calendar; charset=utf-8", s.svc.Calendar.Filename(ym), buf.Bytes())
}

func (s *Server) handleImportICS(ctx *fasthttp.RequestCtx) {
	clientID := string(ctx.QueryArgs().Peek("client"))
	if clientID == "" {
		s.writeError(ctx, fasthttp.StatusBadRequest, "client is required")
		return
	}
	result, err := s.svc.Calendar.Import(ctx, clientID, bytes.NewReader(ctx.PostBody()))
	if err != nil {
		s.writeServiceError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, calendarImportResponse{Added: result.Added, Skipped: result.Skipped})
}

func (s *Server) handleBackupExport(ctx *fasthttp.RequestCtx) {
	var buf bytes.Buffer
	if err := s.svc.Backup.Export(ctx, &buf); err != nil {
		s.logger.Error("backup export failed", "error", err)
		s.writeError(ctx, fasthttp.StatusInternalServerError, "Backup export failed")
		return
	}
	s.writeAttachment(ctx, "application/json", s.svc.Backup.Filename(s.now()), buf.Bytes())
}

func (s *Server) handleBackupImport(ctx *fasthttp.RequestCtx) {
	backup, err := s.svc.Backup.Import(ctx, bytes.NewReader(ctx.PostBody()))
	if err != nil {
		s.writeServiceError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, importResponse{Clients: len(backup.Clients), Events: len(backup.Events)})
}

func (s *Server) handleAsk(ctx *fasthttp.RequestCtx) {
	var req askRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	reply, err := s.svc.Chat.Send(ctx, req.Question)
	if err != nil {
		s.writeServiceError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, askResponse{Reply: reply.Content, Responder: s.svc.Chat.Responder()})
}

// month reads ?month=YYYY-MM, defaulting to the current month
func (s *Server) month(ctx *fasthttp.RequestCtx) (domain.YearMonth, bool) {
	raw := strings.TrimSpace(string(ctx.QueryArgs().Peek("month")))
	if raw == "" {
		return domain.MonthOf(s.now()), true
	}
	ym, err := domain.ParseYearMonth(raw)
	if err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return domain.YearMonth{}, false
	}
	return ym, true
}

func (s *Server) writeServiceError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidClient),
		errors.Is(err, service.ErrInvalidEvent),
		errors.Is(err, service.ErrInvalidBackup),
		errors.Is(err, service.ErrInvalidCalendar),
		errors.Is(err, assistant.ErrEmptyMessage):
		s.writeError(ctx, fasthttp.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrClientNotFound), errors.Is(err, service.ErrEventNotFound):
		s.writeError(ctx, fasthttp.StatusNotFound, err.Error())
	case errors.Is(err, assistant.ErrBusy):
		s.writeError(ctx, fasthttp.StatusTooManyRequests, err.Error())
	default:
		s.logger.Error("request failed", "path", string(ctx.Path()), "error", err)
		s.writeError(ctx, fasthttp.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", "error", err)
		ctx.Error("internal error", fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	s.writeJSON(ctx, status, ErrorResponse{Status: status, Message: message})
}

func (s *Server) writeAttachment(ctx *fasthttp.RequestCtx, contentType, filename string, body []byte) {
	ctx.SetContentType(contentType)
	ctx.Response.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(body)
}
