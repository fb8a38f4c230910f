package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/goccy/go-json"

	"github.com/andy/workcal/internal/domain"
	applog "github.com/andy/workcal/internal/log"
)

var _ Repository = (*Repo)(nil)

// Repo is the in-memory owner of clients and events.
// Every mutation rewrites the touched collection to the KVStore.
type Repo struct {
	mu      sync.RWMutex
	clients []domain.Client
	events  []domain.CalendarEvent

	kv     KVStore
	logger *applog.Logger
}

// Open reads both collections from kv once. A missing clients key seeds the
// built-in client list, a missing events key starts empty.
func Open(ctx context.Context, kv KVStore, logger *applog.Logger) (*Repo, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	r := &Repo{kv: kv, logger: logger.WithComponent(applog.ComponentRepository)}

	clients, err := load[domain.Client](ctx, kv, KeyClients)
	switch {
	case errors.Is(err, ErrKeyNotFound):
		r.clients = domain.SeedClients()
		r.logger.Info("no stored clients, using seed list", "count", len(r.clients))
	case err != nil:
		return nil, err
	default:
		r.clients = clients
	}

	events, err := load[domain.CalendarEvent](ctx, kv, KeyEvents)
	switch {
	case errors.Is(err, ErrKeyNotFound):
		r.events = make([]domain.CalendarEvent, 0)
	case err != nil:
		return nil, err
	default:
		r.events = events
	}

	r.logger.Debug("repository loaded", "clients", len(r.clients), "events", len(r.events))
	return r, nil
}

func load[T any](ctx context.Context, kv KVStore, key string) ([]T, error) {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0)
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode stored %s: %w", key, err)
	}
	if items == nil {
		items = make([]T, 0)
	}
	return items, nil
}

// ListClients returns a copy of the client collection
func (r *Repo) ListClients() []domain.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.clients)
}

// ListEvents returns a copy of the event collection
func (r *Repo) ListEvents() []domain.CalendarEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.events)
}

// Snapshot returns copies of both collections taken under one lock
func (r *Repo) Snapshot() ([]domain.Client, []domain.CalendarEvent) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.clients), slices.Clone(r.events)
}

// GetClient looks a client up by id
func (r *Repo) GetClient(id string) (domain.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := clientIndex(r.clients, id); i >= 0 {
		return r.clients[i], true
	}
	return domain.Client{}, false
}

// UpsertClient replaces the client with the same id, or appends it
func (r *Repo) UpsertClient(ctx context.Context, client domain.Client) error {
	r.mu.Lock()
	if i := clientIndex(r.clients, client.ID); i >= 0 {
		r.clients[i] = client
	} else {
		r.clients = append(r.clients, client)
	}
	snapshot := slices.Clone(r.clients)
	r.mu.Unlock()

	return r.persist(ctx, KeyClients, snapshot)
}

// DeleteClient removes a client by id. Events referencing it are kept.
func (r *Repo) DeleteClient(ctx context.Context, id string) error {
	r.mu.Lock()
	i := clientIndex(r.clients, id)
	if i < 0 {
		r.mu.Unlock()
		return nil
	}
	r.clients = slices.Delete(r.clients, i, i+1)
	snapshot := slices.Clone(r.clients)
	r.mu.Unlock()

	return r.persist(ctx, KeyClients, snapshot)
}

// UpsertEvent replaces the event with the same id, or appends it
func (r *Repo) UpsertEvent(ctx context.Context, event domain.CalendarEvent) error {
	r.mu.Lock()
	if i := eventIndex(r.events, event.ID); i >= 0 {
		r.events[i] = event
	} else {
		r.events = append(r.events, event)
	}
	snapshot := slices.Clone(r.events)
	r.mu.Unlock()

	return r.persist(ctx, KeyEvents, snapshot)
}

// DeleteEvent removes an event by id
func (r *Repo) DeleteEvent(ctx context.Context, id string) error {
	r.mu.Lock()
	i := eventIndex(r.events, id)
	if i < 0 {
		r.mu.Unlock()
		return nil
	}
	r.events = slices.Delete(r.events, i, i+1)
	snapshot := slices.Clone(r.events)
	r.mu.Unlock()

	return r.persist(ctx, KeyEvents, snapshot)
}

// FindEventsOn returns the events logged on a YYYY-MM-DD date
func (r *Repo) FindEventsOn(date string) []domain.CalendarEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return filterEvents(r.events, func(e domain.CalendarEvent) bool { return e.Date == date })
}

// FindEventsForClient returns every event referencing clientID
func (r *Repo) FindEventsForClient(clientID string) []domain.CalendarEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return filterEvents(r.events, func(e domain.CalendarEvent) bool { return e.ClientID == clientID })
}

// FindEventsInMonth returns the events whose date falls in ym
func (r *Repo) FindEventsInMonth(ym domain.YearMonth) []domain.CalendarEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return filterEvents(r.events, func(e domain.CalendarEvent) bool { return ym.Contains(e.Date) })
}

// ReplaceAll swaps both collections and writes both keys
func (r *Repo) ReplaceAll(ctx context.Context, clients []domain.Client, events []domain.CalendarEvent) error {
	if clients == nil {
		clients = make([]domain.Client, 0)
	}
	if events == nil {
		events = make([]domain.CalendarEvent, 0)
	}

	r.mu.Lock()
	r.clients = slices.Clone(clients)
	r.events = slices.Clone(events)
	r.mu.Unlock()

	return errors.Join(
		r.persist(ctx, KeyClients, clients),
		r.persist(ctx, KeyEvents, events),
	)
}

// persist writes a whole collection. The in-memory state is already updated
// and stays updated if the write fails.
func (r *Repo) persist(ctx context.Context, key string, items any) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := r.kv.Set(ctx, key, data); err != nil {
		r.logger.Error("persist failed", "key", key, "error", err)
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	r.logger.Debug("persisted", "key", key, "bytes", len(data))
	return nil
}
