package uploader

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"infra-catalog/internal/domain"
	"infra-catalog/internal/repository/sqlite"
	"infra-catalog/internal/service"
	"infra-catalog/internal/storage"
)

type fakeStorage struct {
	uploadErr error
	block     chan struct{}
}

func (s *fakeStorage) UploadFile(ctx context.Context, localPath string, opts storage.UploadOptions) (string, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	if opts.ProgressCallback != nil {
		opts.ProgressCallback(50, 100)
		opts.ProgressCallback(100, 100)
	}
	return "s3://" + opts.Bucket + "/" + opts.Key, nil
}

func (s *fakeStorage) ListObjects(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (s *fakeStorage) DeleteObject(ctx context.Context, bucket, key string) error { return nil }

func (s *fakeStorage) GetObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	return "", nil
}

func newTestManager(t *testing.T, store storage.Service) (Manager, service.UploadService, string) {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := sqlite.NewUploadRepository(db)
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("init uploads schema: %v", err)
	}
	uploads := service.NewUploadService(repo)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	dataDir := t.TempDir()
	mgr := NewManager(Config{
		DataDir:       dataDir,
		MaxConcurrent: 2,
		Bucket:        "test-bucket",
		Logger:        logger,
	}, uploads, store)
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("start manager: %v", err)
	}
	t.Cleanup(mgr.Shutdown)
	return mgr, uploads, dataDir
}

func createPendingUpload(t *testing.T, uploads service.UploadService, dataDir, name string) *domain.UploadRecord {
	t.Helper()
	localPath := filepath.Join(dataDir, name)
	if err := os.WriteFile(localPath, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write local file: %v", err)
	}
	record, err := uploads.CreateUpload(context.Background(), name, localPath, 7, "catalog-uploads")
	if err != nil {
		t.Fatalf("create upload record: %v", err)
	}
	return record
}

func waitForStatus(t *testing.T, uploads service.UploadService, id string, want domain.UploadStatus) *domain.UploadRecord {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		record, err := uploads.GetUpload(context.Background(), id)
		if err != nil {
			t.Fatalf("get upload: %v", err)
		}
		if record.Status == want {
			return record
		}
		time.Sleep(10 * time.Millisecond)
	}
	record, _ := uploads.GetUpload(context.Background(), id)
	t.Fatalf("upload %s never reached %s, last: %+v", id, want, record)
	return nil
}

func TestManagerCompletesUpload(t *testing.T) {
	mgr, uploads, dataDir := newTestManager(t, &fakeStorage{})
	record := createPendingUpload(t, uploads, dataDir, "disk.img")

	if err := mgr.Enqueue(context.Background(), record.ID); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	done := waitForStatus(t, uploads, record.ID, domain.UploadStatusCompleted)
	if done.Progress != 100 {
		t.Fatalf("progress = %d, want 100", done.Progress)
	}
	if done.Location != "s3://test-bucket/"+record.ObjectKey {
		t.Fatalf("location = %q", done.Location)
	}
	if done.UploadedAt == nil {
		t.Fatal("completed upload must carry an uploaded_at stamp")
	}
	if _, err := os.Stat(record.LocalPath); !os.IsNotExist(err) {
		t.Fatalf("local file must be removed after upload, stat err: %v", err)
	}
}

func TestManagerRecordsFailure(t *testing.T) {
	mgr, uploads, dataDir := newTestManager(t, &fakeStorage{uploadErr: errors.New("bucket unreachable")})
	record := createPendingUpload(t, uploads, dataDir, "broken.img")

	if err := mgr.Enqueue(context.Background(), record.ID); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	failed := waitForStatus(t, uploads, record.ID, domain.UploadStatusFailed)
	if failed.ErrorMessage != "bucket unreachable" {
		t.Fatalf("error message = %q", failed.ErrorMessage)
	}
}

func TestManagerCancel(t *testing.T) {
	store := &fakeStorage{block: make(chan struct{})}
	mgr, uploads, dataDir := newTestManager(t, store)
	record := createPendingUpload(t, uploads, dataDir, "slow.img")

	if err := mgr.Enqueue(context.Background(), record.ID); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	waitForStatus(t, uploads, record.ID, domain.UploadStatusUploading)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mgr.Cancel(ctx, record.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// cancellation is not a failure state
	got, err := uploads.GetUpload(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("get upload: %v", err)
	}
	if got.Status != domain.UploadStatusUploading {
		t.Fatalf("status after cancel = %s", got.Status)
	}

	// cancelling an unknown or finished upload is a no-op
	if err := mgr.Cancel(ctx, "unknown"); err != nil {
		t.Fatalf("cancel unknown: %v", err)
	}
}

func TestManagerResume(t *testing.T) {
	mgr, uploads, dataDir := newTestManager(t, &fakeStorage{})

	pending := createPendingUpload(t, uploads, dataDir, "pending.img")
	stale := createPendingUpload(t, uploads, dataDir, "stale.img")
	if err := uploads.UpdateStatus(context.Background(), stale.ID, domain.UploadStatusUploading, nil); err != nil {
		t.Fatalf("mark stale uploading: %v", err)
	}
	finished := createPendingUpload(t, uploads, dataDir, "finished.img")
	if err := uploads.MarkUploaded(context.Background(), finished.ID, "s3://test-bucket/done"); err != nil {
		t.Fatalf("mark finished: %v", err)
	}

	if err := mgr.Resume(context.Background()); err != nil {
		t.Fatalf("resume: %v", err)
	}

	waitForStatus(t, uploads, pending.ID, domain.UploadStatusCompleted)
	waitForStatus(t, uploads, stale.ID, domain.UploadStatusCompleted)

	// the already-completed record keeps its original location
	got, err := uploads.GetUpload(context.Background(), finished.ID)
	if err != nil {
		t.Fatalf("get finished: %v", err)
	}
	if got.Location != "s3://test-bucket/done" {
		t.Fatalf("finished location = %q", got.Location)
	}
}
