package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andy/workcal/internal/domain"
	"github.com/andy/workcal/internal/repository"
)

var (
	ErrInvalidClient  = errors.New("invalid client")
	ErrClientNotFound = errors.New("client not found")
)

// ClientInput is the client form. An empty ID creates a new client.
type ClientInput struct {
	ID                  string
	Name                string
	Type                string
	VATNumber           string
	DailyRate           float64
	TotalDaysContracted float64
	Color               string
	TotalContractValue  float64
}

// ClientService manages the client list
type ClientService interface {
	// Save validates the input and creates or replaces the client
	Save(ctx context.Context, input ClientInput) (domain.Client, error)

	// Delete removes a client. Its events stay and show as an unknown client.
	Delete(ctx context.Context, id string) error

	// List returns all clients in insertion order
	List(ctx context.Context) []domain.Client

	// Find looks a client up by id, or by case-insensitive name
	Find(ctx context.Context, idOrName string) (domain.Client, error)
}

type clientService struct {
	repo repository.ClientRepository
}

// NewClientService creates a new client service
func NewClientService(repo repository.ClientRepository) ClientService {
	return &clientService{repo: repo}
}

func (s *clientService) Save(ctx context.Context, input ClientInput) (domain.Client, error) {
	clientType, err := domain.ParseClientType(input.Type)
	if err != nil {
		return domain.Client{}, fmt.Errorf("%w: %v", ErrInvalidClient, err)
	}

	client := domain.Client{
		ID:                  strings.TrimSpace(input.ID),
		Name:                input.Name,
		Type:                clientType,
		VATNumber:           strings.TrimSpace(input.VATNumber),
		DailyRate:           input.DailyRate,
		TotalDaysContracted: input.TotalDaysContracted,
		Color:               strings.TrimSpace(input.Color),
		TotalContractValue:  input.TotalContractValue,
	}

	if client.ID == "" {
		client.ID = domain.NewID()
		if client.Color == "" {
			client.Color = domain.RandomColor()
		}
	} else if existing, ok := s.repo.GetClient(client.ID); ok && client.Color == "" {
		client.Color = existing.Color
	}
	client.Normalize()

	if err := client.Validate(); err != nil {
		return domain.Client{}, fmt.Errorf("%w: %v", ErrInvalidClient, err)
	}

	if err := s.repo.UpsertClient(ctx, client); err != nil {
		return client, fmt.Errorf("failed to save client: %w", err)
	}
	return client, nil
}

func (s *clientService) Delete(ctx context.Context, id string) error {
	if _, ok := s.repo.GetClient(id); !ok {
		return ErrClientNotFound
	}
	if err := s.repo.DeleteClient(ctx, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

func (s *clientService) List(ctx context.Context) []domain.Client {
	return s.repo.ListClients()
}

func (s *clientService) Find(ctx context.Context, idOrName string) (domain.Client, error) {
	key := strings.TrimSpace(idOrName)
	if c, ok := s.repo.GetClient(key); ok {
		return c, nil
	}
	for _, c := range s.repo.ListClients() {
		if strings.EqualFold(c.Name, key) {
			return c, nil
		}
	}
	return domain.Client{}, fmt.Errorf("%w: %s", ErrClientNotFound, idOrName)
}
