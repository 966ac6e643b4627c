package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"infra-catalog/internal/apperrors"
	"infra-catalog/internal/domain"
	"infra-catalog/internal/repository"
)

// UploadService tracks upload records through the pipeline.
type UploadService interface {
	CreateUpload(ctx context.Context, name, localPath string, size int64, keyPrefix string) (*domain.UploadRecord, error)
	GetUpload(ctx context.Context, id string) (*domain.UploadRecord, error)
	ListUploads(ctx context.Context) ([]domain.UploadRecord, error)
	ListByStatuses(ctx context.Context, statuses ...domain.UploadStatus) ([]domain.UploadRecord, error)
	UpdateStatus(ctx context.Context, id string, status domain.UploadStatus, errMsg *string) error
	UpdateProgress(ctx context.Context, id string, progress int) error
	MarkUploaded(ctx context.Context, id string, location string) error
	DeleteUpload(ctx context.Context, id string) error
}

type uploadService struct {
	uploads repository.UploadRepository
}

func NewUploadService(uploads repository.UploadRepository) UploadService {
	return &uploadService{uploads: uploads}
}

func (s *uploadService) CreateUpload(ctx context.Context, name, localPath string, size int64, keyPrefix string) (*domain.UploadRecord, error) {
	if name == "" {
		return nil, apperrors.Validation("file", "file name is required")
	}
	if localPath == "" {
		return nil, apperrors.Validation("file", "local path is required")
	}

	id := uuid.NewString()
	record := &domain.UploadRecord{
		ID:        id,
		Name:      name,
		Size:      size,
		LocalPath: localPath,
		Status:    domain.UploadStatusPending,
		ObjectKey: objectKey(keyPrefix, id, name),
	}
	if err := s.uploads.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *uploadService) GetUpload(ctx context.Context, id string) (*domain.UploadRecord, error) {
	return s.uploads.Get(ctx, id)
}

func (s *uploadService) ListUploads(ctx context.Context) ([]domain.UploadRecord, error) {
	return s.uploads.List(ctx)
}

func (s *uploadService) ListByStatuses(ctx context.Context, statuses ...domain.UploadStatus) ([]domain.UploadRecord, error) {
	return s.uploads.ListByStatuses(ctx, statuses...)
}

func (s *uploadService) UpdateStatus(ctx context.Context, id string, status domain.UploadStatus, errMsg *string) error {
	return s.uploads.UpdateStatus(ctx, id, status, errMsg)
}

func (s *uploadService) UpdateProgress(ctx context.Context, id string, progress int) error {
	return s.uploads.UpdateProgress(ctx, id, progress)
}

func (s *uploadService) MarkUploaded(ctx context.Context, id string, location string) error {
	return s.uploads.MarkUploaded(ctx, id, location, time.Now())
}

func (s *uploadService) DeleteUpload(ctx context.Context, id string) error {
	return s.uploads.Delete(ctx, id)
}

func objectKey(prefix, id, name string) string {
	base := filepath.Base(name)
	if prefix == "" {
		return fmt.Sprintf("%s/%s", id, base)
	}
	return fmt.Sprintf("%s/%s/%s", prefix, id, base)
}
