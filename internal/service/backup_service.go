package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/andy/workcal/internal/domain"
	"github.com/andy/workcal/internal/repository"
)

// ErrInvalidBackup is returned for a backup that does not parse or lacks a collection
var ErrInvalidBackup = errors.New("invalid backup file")

// Backup is the exported document
type Backup struct {
	Clients []domain.Client        `json:"clients"`
	Events  []domain.CalendarEvent `json:"events"`
}

// backupFile distinguishes an absent field from an empty list
type backupFile struct {
	Clients *[]domain.Client        `json:"clients"`
	Events  *[]domain.CalendarEvent `json:"events"`
}

// BackupService exports and restores both collections as one JSON document
type BackupService interface {
	// Export writes {"clients": [...], "events": [...]} to w
	Export(ctx context.Context, w io.Writer) error

	// Import replaces both collections. Nothing changes unless both fields are present.
	Import(ctx context.Context, r io.Reader) (*Backup, error)

	// Filename returns backup_<YYYYMMDD>.json
	Filename(now time.Time) string
}

type backupService struct {
	repo repository.Repository
}

// NewBackupService creates a new backup service
func NewBackupService(repo repository.Repository) BackupService {
	return &backupService{repo: repo}
}

func (s *backupService) Export(ctx context.Context, w io.Writer) error {
	clients, events := s.repo.Snapshot()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Backup{Clients: clients, Events: events}); err != nil {
		return fmt.Errorf("failed to export backup: %w", err)
	}
	return nil
}

func (s *backupService) Import(ctx context.Context, r io.Reader) (*Backup, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}

	var file backupFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if file.Clients == nil {
		return nil, fmt.Errorf("%w: missing clients", ErrInvalidBackup)
	}
	if file.Events == nil {
		return nil, fmt.Errorf("%w: missing events", ErrInvalidBackup)
	}

	backup := &Backup{Clients: *file.Clients, Events: *file.Events}
	if err := s.repo.ReplaceAll(ctx, backup.Clients, backup.Events); err != nil {
		return backup, fmt.Errorf("failed to persist backup: %w", err)
	}
	return backup, nil
}

func (s *backupService) Filename(now time.Time) string {
	return fmt.Sprintf("backup_%s.json", now.Format("20060102"))
}
