package repository

import (
	"context"
	"time"

	"infra-catalog/internal/domain"
)

// UploadRepository tracks upload pipeline records.
type UploadRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, record *domain.UploadRecord) error
	Get(ctx context.Context, id string) (*domain.UploadRecord, error)
	List(ctx context.Context) ([]domain.UploadRecord, error)
	ListByStatuses(ctx context.Context, statuses ...domain.UploadStatus) ([]domain.UploadRecord, error)
	UpdateStatus(ctx context.Context, id string, status domain.UploadStatus, errorMessage *string) error
	UpdateProgress(ctx context.Context, id string, progress int) error
	MarkUploaded(ctx context.Context, id string, location string, uploadedAt time.Time) error
	Delete(ctx context.Context, id string) error
}
