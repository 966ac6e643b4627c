package uploader

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"infra-catalog/internal/domain"
	"infra-catalog/internal/service"
	"infra-catalog/internal/storage"
)

// Manager coordinates the upload pipeline: accepted files move from the
// local data dir to object storage under bounded concurrency.
type Manager interface {
	Start(ctx context.Context) error
	Shutdown()
	Enqueue(ctx context.Context, recordID string) error
	Resume(ctx context.Context) error
	Cancel(ctx context.Context, recordID string) error
}

type Config struct {
	DataDir       string
	MaxConcurrent int
	Bucket        string
	Logger        *logrus.Logger
}

type manager struct {
	cfg     Config
	uploads service.UploadService
	storage storage.Service

	sem    chan struct{}
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	active map[string]*uploadHandle
}

type uploadHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(cfg Config, uploads service.UploadService, store storage.Service) Manager {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 3
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &manager{
		cfg:     cfg,
		uploads: uploads,
		storage: store,
		sem:     make(chan struct{}, cfg.MaxConcurrent),
		active:  make(map[string]*uploadHandle),
	}
}

func (m *manager) Start(ctx context.Context) error {
	if err := os.MkdirAll(m.cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create upload data dir: %w", err)
	}
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.cfg.Logger.Infof("upload manager started, data dir: %s", m.cfg.DataDir)
	return nil
}

func (m *manager) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.cfg.Logger.Info("upload manager stopped")
}

func (m *manager) Enqueue(ctx context.Context, recordID string) error {
	record, err := m.uploads.GetUpload(ctx, recordID)
	if err != nil {
		return err
	}
	m.spawnUpload(*record)
	return nil
}

// Resume requeues records that never reached a terminal success state, so a
// restart picks up where the previous process stopped.
func (m *manager) Resume(ctx context.Context) error {
	records, err := m.uploads.ListByStatuses(ctx,
		domain.UploadStatusPending,
		domain.UploadStatusUploading,
	)
	if err != nil {
		return err
	}

	for i := range records {
		m.spawnUpload(records[i])
	}
	return nil
}

func (m *manager) spawnUpload(record domain.UploadRecord) {
	uploadCtx, cancel := context.WithCancel(m.ctx)
	handle := &uploadHandle{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	m.register(record.ID, handle)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			m.unregister(record.ID)
			close(handle.done)
		}()
		select {
		case <-m.ctx.Done():
			return
		case <-uploadCtx.Done():
			return
		case m.sem <- struct{}{}:
			defer func() { <-m.sem }()
			m.handleUpload(uploadCtx, &record)
		}
	}()
}

func (m *manager) register(id string, handle *uploadHandle) {
	m.mu.Lock()
	m.active[id] = handle
	m.mu.Unlock()
}

func (m *manager) unregister(id string) {
	m.mu.Lock()
	delete(m.active, id)
	m.mu.Unlock()
}

func (m *manager) Cancel(ctx context.Context, recordID string) error {
	m.mu.Lock()
	handle, ok := m.active[recordID]
	m.mu.Unlock()
	if !ok {
		return nil
	}

	handle.cancel()

	select {
	case <-handle.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *manager) handleUpload(ctx context.Context, record *domain.UploadRecord) {
	logger := m.cfg.Logger.WithField("upload_id", record.ID)

	if record.Status == domain.UploadStatusCompleted {
		logger.Debug("upload already completed, skipping")
		return
	}

	if err := m.uploads.UpdateStatus(ctx, record.ID, domain.UploadStatusUploading, nil); err != nil {
		logger.Errorf("update status failed: %v", err)
		return
	}

	lastProgress := -1
	location, err := m.storage.UploadFile(ctx, record.LocalPath, storage.UploadOptions{
		Bucket: m.cfg.Bucket,
		Key:    record.ObjectKey,
		ProgressCallback: func(done, total int64) {
			progress := 0
			if total > 0 {
				progress = int((done * 100) / total)
			}
			if progress == lastProgress {
				return
			}
			lastProgress = progress
			if err := m.uploads.UpdateProgress(ctx, record.ID, progress); err != nil {
				logger.Warnf("update progress: %v", err)
			}
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			logger.Info("upload cancelled")
			return
		}
		m.failUpload(ctx, record.ID, err)
		return
	}

	if err := m.uploads.MarkUploaded(ctx, record.ID, location); err != nil {
		logger.Warnf("mark uploaded: %v", err)
		return
	}
	logger.Infof("uploaded to %s", location)

	if err := os.Remove(record.LocalPath); err != nil && !os.IsNotExist(err) {
		logger.Warnf("remove local file: %v", err)
	}
}

func (m *manager) failUpload(ctx context.Context, id string, cause error) {
	msg := cause.Error()
	// record the failure against a fresh context so shutdown does not lose it
	updateCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := m.uploads.UpdateStatus(updateCtx, id, domain.UploadStatusFailed, &msg); err != nil {
		m.cfg.Logger.Errorf("mark upload %s failed: %v", id, err)
	}
}
