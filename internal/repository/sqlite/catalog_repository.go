package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"infra-catalog/internal/domain"
	"infra-catalog/internal/repository"
)

// Catalog table names. Each simple resource gets its own table with the
// shared entry shape.
const (
	TableCategories       = "categories"
	TableOperatingSystems = "operating_systems"
	TableTags             = "tags"
	TableLocations        = "locations"
)

// CatalogRepository implements repository.CatalogRepository over one table.
type CatalogRepository struct {
	db    *sql.DB
	table string
}

func NewCatalogRepository(db *sql.DB, table string) repository.CatalogRepository {
	return &CatalogRepository{db: db, table: table}
}

func (r *CatalogRepository) Init(ctx context.Context) error {
	stmt := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	deleted_at DATETIME
);`, r.table)
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create %s table: %w", r.table, err)
	}
	return nil
}

func (r *CatalogRepository) Create(ctx context.Context, entry *domain.CatalogEntry) (int64, error) {
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (name, description, created_at, updated_at) VALUES (?, ?, ?, ?)`, r.table),
		entry.Name, entry.Description, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", r.table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s last insert id: %w", r.table, err)
	}
	entry.ID = id
	return id, nil
}

func (r *CatalogRepository) Get(ctx context.Context, id int64) (*domain.CatalogEntry, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, name, description, created_at, updated_at, deleted_at FROM %s WHERE id = ? AND deleted_at IS NULL`, r.table),
		id,
	)
	return scanEntry(row, r.table)
}

func (r *CatalogRepository) Update(ctx context.Context, entry *domain.CatalogEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET name = ?, description = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`, r.table),
		entry.Name, entry.Description, entry.UpdatedAt, entry.ID,
	)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table, err)
	}
	return requireRow(res, r.table)
}

func (r *CatalogRepository) SoftDelete(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`, r.table),
		now, now, id,
	)
	if err != nil {
		return fmt.Errorf("soft delete %s: %w", r.table, err)
	}
	return requireRow(res, r.table)
}

func (r *CatalogRepository) Restore(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET deleted_at = NULL, updated_at = ? WHERE id = ? AND deleted_at IS NOT NULL`, r.table),
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("restore %s: %w", r.table, err)
	}
	return requireRow(res, r.table)
}

func (r *CatalogRepository) List(ctx context.Context, offset, limit int) ([]domain.CatalogEntry, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE deleted_at IS NULL`, r.table),
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.table, err)
	}

	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, name, description, created_at, updated_at, deleted_at FROM %s WHERE deleted_at IS NULL ORDER BY id LIMIT ? OFFSET ?`, r.table),
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.table, err)
	}
	defer rows.Close()

	var entries []domain.CatalogEntry
	for rows.Next() {
		entry, err := scanEntry(rows, r.table)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate %s: %w", r.table, err)
	}
	return entries, total, nil
}

func scanEntry(row interface {
	Scan(dest ...any) error
}, table string) (*domain.CatalogEntry, error) {
	var (
		entry   domain.CatalogEntry
		deleted sql.NullTime
	)
	if err := row.Scan(
		&entry.ID,
		&entry.Name,
		&entry.Description,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&deleted,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}
	if deleted.Valid {
		t := deleted.Time
		entry.DeletedAt = &t
	}
	return &entry, nil
}

func requireRow(res sql.Result, table string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", table, err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
