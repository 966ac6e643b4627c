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

var createServersSchema = []string{`
CREATE TABLE IF NOT EXISTS servers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	ip_address TEXT NOT NULL DEFAULT '',
	category_id INTEGER NOT NULL DEFAULT 0,
	os_id INTEGER NOT NULL DEFAULT 0,
	location_id INTEGER NOT NULL DEFAULT 0,
	notes TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	deleted_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS server_tags (
	server_id INTEGER NOT NULL,
	tag_id INTEGER NOT NULL,
	PRIMARY KEY (server_id, tag_id)
);`,
}

type ServerRepository struct {
	db *sql.DB
}

func NewServerRepository(db *sql.DB) repository.ServerRepository {
	return &ServerRepository{db: db}
}

func (r *ServerRepository) Init(ctx context.Context) error {
	for _, stmt := range createServersSchema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create servers schema: %w", err)
		}
	}
	return nil
}

func (r *ServerRepository) Create(ctx context.Context, server *domain.Server) (int64, error) {
	now := time.Now().UTC()
	server.CreatedAt = now
	server.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO servers (name, ip_address, category_id, os_id, location_id, notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		server.Name,
		server.IPAddress,
		server.CategoryID,
		server.OSID,
		server.LocationID,
		server.Notes,
		server.CreatedAt,
		server.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert server: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("server last insert id: %w", err)
	}
	server.ID = id

	if err := r.replaceTags(ctx, id, server.TagIDs); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *ServerRepository) Get(ctx context.Context, id int64) (*domain.Server, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, ip_address, category_id, os_id, location_id, notes, created_at, updated_at, deleted_at
FROM servers
WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	server, err := scanServer(row)
	if err != nil {
		return nil, err
	}
	tags, err := r.tagsFor(ctx, server.ID)
	if err != nil {
		return nil, err
	}
	server.TagIDs = tags
	return server, nil
}

func (r *ServerRepository) Update(ctx context.Context, server *domain.Server) error {
	server.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE servers
SET name = ?, ip_address = ?, category_id = ?, os_id = ?, location_id = ?, notes = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL`,
		server.Name,
		server.IPAddress,
		server.CategoryID,
		server.OSID,
		server.LocationID,
		server.Notes,
		server.UpdatedAt,
		server.ID,
	)
	if err != nil {
		return fmt.Errorf("update server: %w", err)
	}
	if err := requireRow(res, "servers"); err != nil {
		return err
	}
	return r.replaceTags(ctx, server.ID, server.TagIDs)
}

func (r *ServerRepository) SoftDelete(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE servers SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, id,
	)
	if err != nil {
		return fmt.Errorf("soft delete server: %w", err)
	}
	return requireRow(res, "servers")
}

func (r *ServerRepository) Restore(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE servers SET deleted_at = NULL, updated_at = ? WHERE id = ? AND deleted_at IS NOT NULL`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("restore server: %w", err)
	}
	return requireRow(res, "servers")
}

func (r *ServerRepository) List(ctx context.Context, offset, limit int) ([]domain.Server, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM servers WHERE deleted_at IS NULL`,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count servers: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, ip_address, category_id, os_id, location_id, notes, created_at, updated_at, deleted_at
FROM servers
WHERE deleted_at IS NULL
ORDER BY id
LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list servers: %w", err)
	}
	defer rows.Close()

	var servers []domain.Server
	for rows.Next() {
		server, err := scanServer(rows)
		if err != nil {
			return nil, 0, err
		}
		servers = append(servers, *server)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate servers: %w", err)
	}

	for i := range servers {
		tags, err := r.tagsFor(ctx, servers[i].ID)
		if err != nil {
			return nil, 0, err
		}
		servers[i].TagIDs = tags
	}
	return servers, total, nil
}

func (r *ServerRepository) replaceTags(ctx context.Context, serverID int64, tagIDs []int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM server_tags WHERE server_id = ?`, serverID); err != nil {
		return fmt.Errorf("clear server tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO server_tags (server_id, tag_id) VALUES (?, ?)`,
			serverID, tagID,
		); err != nil {
			return fmt.Errorf("insert server tag: %w", err)
		}
	}
	return nil
}

func (r *ServerRepository) tagsFor(ctx context.Context, serverID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tag_id FROM server_tags WHERE server_id = ? ORDER BY tag_id`,
		serverID,
	)
	if err != nil {
		return nil, fmt.Errorf("list server tags: %w", err)
	}
	defer rows.Close()

	var tags []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan server tag: %w", err)
		}
		tags = append(tags, id)
	}
	return tags, rows.Err()
}

func scanServer(row interface {
	Scan(dest ...any) error
}) (*domain.Server, error) {
	var (
		server  domain.Server
		deleted sql.NullTime
	)
	if err := row.Scan(
		&server.ID,
		&server.Name,
		&server.IPAddress,
		&server.CategoryID,
		&server.OSID,
		&server.LocationID,
		&server.Notes,
		&server.CreatedAt,
		&server.UpdatedAt,
		&deleted,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan server: %w", err)
	}
	if deleted.Valid {
		t := deleted.Time
		server.DeletedAt = &t
	}
	return &server, nil
}
