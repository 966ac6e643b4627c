package service

import (
	"context"
	"strings"

	"infra-catalog/internal/apperrors"
	"infra-catalog/internal/domain"
	"infra-catalog/internal/repository"
)

// ServerInput carries the writable fields of a server record.
type ServerInput struct {
	Name       string
	IPAddress  string
	CategoryID int64
	OSID       int64
	LocationID int64
	TagIDs     []int64
	Notes      string
}

// ServerService coordinates CRUD for cataloged servers.
type ServerService interface {
	Create(ctx context.Context, input ServerInput) (*domain.Server, error)
	Get(ctx context.Context, id int64) (*domain.Server, error)
	Update(ctx context.Context, id int64, input ServerInput) (*domain.Server, error)
	Delete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	List(ctx context.Context, page, perPage int) ([]domain.Server, Page, error)
}

type serverService struct {
	servers repository.ServerRepository
}

func NewServerService(servers repository.ServerRepository) ServerService {
	return &serverService{servers: servers}
}

func (s *serverService) Create(ctx context.Context, input ServerInput) (*domain.Server, error) {
	server, err := serverFromInput(input)
	if err != nil {
		return nil, err
	}
	if _, err := s.servers.Create(ctx, server); err != nil {
		return nil, err
	}
	return server, nil
}

func (s *serverService) Get(ctx context.Context, id int64) (*domain.Server, error) {
	return s.servers.Get(ctx, id)
}

func (s *serverService) Update(ctx context.Context, id int64, input ServerInput) (*domain.Server, error) {
	updated, err := serverFromInput(input)
	if err != nil {
		return nil, err
	}
	server, err := s.servers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated.ID = server.ID
	updated.CreatedAt = server.CreatedAt
	if err := s.servers.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *serverService) Delete(ctx context.Context, id int64) error {
	return s.servers.SoftDelete(ctx, id)
}

func (s *serverService) Restore(ctx context.Context, id int64) error {
	return s.servers.Restore(ctx, id)
}

func (s *serverService) List(ctx context.Context, page, perPage int) ([]domain.Server, Page, error) {
	page, perPage = clampPage(page, perPage)
	servers, total, err := s.servers.List(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, Page{}, err
	}
	return servers, Page{Page: page, PerPage: perPage, Total: total}, nil
}

func serverFromInput(input ServerInput) (*domain.Server, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.Validation("name", "name is required")
	}
	return &domain.Server{
		Name:       name,
		IPAddress:  strings.TrimSpace(input.IPAddress),
		CategoryID: input.CategoryID,
		OSID:       input.OSID,
		LocationID: input.LocationID,
		TagIDs:     input.TagIDs,
		Notes:      strings.TrimSpace(input.Notes),
	}, nil
}
