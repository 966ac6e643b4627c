package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"infra-catalog/internal/domain"
	"infra-catalog/internal/repository"
)

const createUploadsTable = `
CREATE TABLE IF NOT EXISTS uploads (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	size INTEGER NOT NULL DEFAULT 0,
	local_path TEXT NOT NULL,
	status TEXT NOT NULL,
	progress INTEGER NOT NULL DEFAULT 0,
	object_key TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	uploaded_at DATETIME
);
`

type UploadRepository struct {
	db *sql.DB
}

func NewUploadRepository(db *sql.DB) repository.UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUploadsTable); err != nil {
		return fmt.Errorf("create uploads table: %w", err)
	}
	return nil
}

func (r *UploadRepository) Create(ctx context.Context, record *domain.UploadRecord) error {
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO uploads (id, name, size, local_path, status, progress, object_key, location, error_message, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Name,
		record.Size,
		record.LocalPath,
		string(record.Status),
		record.Progress,
		record.ObjectKey,
		record.Location,
		record.ErrorMessage,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

const selectUploadColumns = `
SELECT id, name, size, local_path, status, progress, object_key, location, error_message, created_at, updated_at, uploaded_at
FROM uploads`

func (r *UploadRepository) Get(ctx context.Context, id string) (*domain.UploadRecord, error) {
	row := r.db.QueryRowContext(ctx, selectUploadColumns+` WHERE id = ?`, id)
	return scanUpload(row)
}

func (r *UploadRepository) List(ctx context.Context) ([]domain.UploadRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectUploadColumns+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()
	return collectUploads(rows)
}

func (r *UploadRepository) ListByStatuses(ctx context.Context, statuses ...domain.UploadStatus) ([]domain.UploadRecord, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}

	rows, err := r.db.QueryContext(ctx,
		selectUploadColumns+` WHERE status IN (`+placeholders+`) ORDER BY created_at`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list uploads by status: %w", err)
	}
	defer rows.Close()
	return collectUploads(rows)
}

func (r *UploadRepository) UpdateStatus(ctx context.Context, id string, status domain.UploadStatus, errorMessage *string) error {
	msg := ""
	if errorMessage != nil {
		msg = *errorMessage
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE uploads SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(status), msg, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update upload status: %w", err)
	}
	return requireRow(res, "uploads")
}

func (r *UploadRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE uploads SET progress = ?, updated_at = ? WHERE id = ?`,
		progress, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update upload progress: %w", err)
	}
	return requireRow(res, "uploads")
}

func (r *UploadRepository) MarkUploaded(ctx context.Context, id string, location string, uploadedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE uploads
SET status = ?, progress = 100, location = ?, error_message = '', uploaded_at = ?, updated_at = ?
WHERE id = ?`,
		string(domain.UploadStatusCompleted), location, uploadedAt.UTC(), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("mark upload completed: %w", err)
	}
	return requireRow(res, "uploads")
}

func (r *UploadRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM uploads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}
	return requireRow(res, "uploads")
}

func collectUploads(rows *sql.Rows) ([]domain.UploadRecord, error) {
	var records []domain.UploadRecord
	for rows.Next() {
		record, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uploads: %w", err)
	}
	return records, nil
}

func scanUpload(row interface {
	Scan(dest ...any) error
}) (*domain.UploadRecord, error) {
	var (
		record   domain.UploadRecord
		status   string
		uploaded sql.NullTime
	)
	if err := row.Scan(
		&record.ID,
		&record.Name,
		&record.Size,
		&record.LocalPath,
		&status,
		&record.Progress,
		&record.ObjectKey,
		&record.Location,
		&record.ErrorMessage,
		&record.CreatedAt,
		&record.UpdatedAt,
		&uploaded,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan upload: %w", err)
	}
	record.Status = domain.UploadStatus(status)
	if uploaded.Valid {
		t := uploaded.Time
		record.UploadedAt = &t
	}
	return &record, nil
}
