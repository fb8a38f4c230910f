package service

import (
	"context"
	"fmt"

	"github.com/andy/workcal/internal/domain"
	"github.com/andy/workcal/internal/repository"
)

// StatementService builds per-client monthly billing statements
type StatementService interface {
	// Build bills every event of the client in the month at the client's daily rate
	Build(ctx context.Context, clientID string, ym domain.YearMonth) (*domain.Statement, error)
}

type statementService struct {
	repo     repository.Repository
	taxRate  float64
	currency string
}

// NewStatementService creates a new statement service
func NewStatementService(repo repository.Repository, taxRate float64, currency string) StatementService {
	return &statementService{
		repo:     repo,
		taxRate:  taxRate,
		currency: currency,
	}
}

func (s *statementService) Build(ctx context.Context, clientID string, ym domain.YearMonth) (*domain.Statement, error) {
	client, ok := s.repo.GetClient(clientID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClientNotFound, clientID)
	}

	statement := domain.NewStatement(client, ym, s.taxRate, s.currency)
	if err := statement.Validate(); err != nil {
		return nil, fmt.Errorf("failed to build statement: %w", err)
	}

	events := s.repo.FindEventsForClient(clientID)
	SortEventsByDate(events)
	for _, e := range events {
		if ym.Contains(e.Date) {
			statement.AddEvent(e)
		}
	}
	statement.CalculateTotals()

	return statement, nil
}
