package domain

import "time"

type UploadStatus string

const (
	UploadStatusPending   UploadStatus = "pending"
	UploadStatusUploading UploadStatus = "uploading"
	UploadStatusCompleted UploadStatus = "completed"
	UploadStatusFailed    UploadStatus = "failed"
)

// UploadRecord tracks one accepted file on its way to object storage.
type UploadRecord struct {
	ID           string
	Name         string
	Size         int64
	LocalPath    string
	Status       UploadStatus
	Progress     int
	ObjectKey    string
	Location     string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UploadedAt   *time.Time
}
