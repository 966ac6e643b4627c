package repository

import (
	"context"

	"infra-catalog/internal/domain"
)

// CatalogRepository exposes CRUD with soft delete for one simple catalog
// resource table (categories, operating systems, tags, locations).
type CatalogRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, entry *domain.CatalogEntry) (int64, error)
	Get(ctx context.Context, id int64) (*domain.CatalogEntry, error)
	Update(ctx context.Context, entry *domain.CatalogEntry) error
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	List(ctx context.Context, offset, limit int) ([]domain.CatalogEntry, int64, error)
}

// ServerRepository manages server rows and their tag associations.
type ServerRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, server *domain.Server) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Server, error)
	Update(ctx context.Context, server *domain.Server) error
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	List(ctx context.Context, offset, limit int) ([]domain.Server, int64, error)
}
