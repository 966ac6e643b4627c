package service

import (
	"context"
	"strings"

	"infra-catalog/internal/apperrors"
	"infra-catalog/internal/domain"
	"infra-catalog/internal/repository"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Page describes one page of a list result.
type Page struct {
	Page    int
	PerPage int
	Total   int64
}

// CatalogService coordinates CRUD for one simple catalog resource.
type CatalogService interface {
	Create(ctx context.Context, name, description string) (*domain.CatalogEntry, error)
	Get(ctx context.Context, id int64) (*domain.CatalogEntry, error)
	Update(ctx context.Context, id int64, name, description string) (*domain.CatalogEntry, error)
	Delete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	List(ctx context.Context, page, perPage int) ([]domain.CatalogEntry, Page, error)
}

type catalogService struct {
	entries repository.CatalogRepository
}

func NewCatalogService(entries repository.CatalogRepository) CatalogService {
	return &catalogService{entries: entries}
}

func (s *catalogService) Create(ctx context.Context, name, description string) (*domain.CatalogEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("name", "name is required")
	}
	entry := &domain.CatalogEntry{Name: name, Description: strings.TrimSpace(description)}
	if _, err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *catalogService) Get(ctx context.Context, id int64) (*domain.CatalogEntry, error) {
	return s.entries.Get(ctx, id)
}

func (s *catalogService) Update(ctx context.Context, id int64, name, description string) (*domain.CatalogEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("name", "name is required")
	}
	entry, err := s.entries.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	entry.Name = name
	entry.Description = strings.TrimSpace(description)
	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *catalogService) Delete(ctx context.Context, id int64) error {
	return s.entries.SoftDelete(ctx, id)
}

func (s *catalogService) Restore(ctx context.Context, id int64) error {
	return s.entries.Restore(ctx, id)
}

func (s *catalogService) List(ctx context.Context, page, perPage int) ([]domain.CatalogEntry, Page, error) {
	page, perPage = clampPage(page, perPage)
	entries, total, err := s.entries.List(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, Page{}, err
	}
	return entries, Page{Page: page, PerPage: perPage, Total: total}, nil
}

func clampPage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}
