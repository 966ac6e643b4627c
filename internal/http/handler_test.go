package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"infra-catalog/internal/auth"
	"infra-catalog/internal/repository/sqlite"
	"infra-catalog/internal/service"
	"infra-catalog/internal/storage"
)

type stubManager struct {
	enqueued  []string
	cancelled []string
	cancelErr error
}

func (m *stubManager) Start(ctx context.Context) error { return nil }
func (m *stubManager) Shutdown()                       {}
func (m *stubManager) Resume(ctx context.Context) error {
	return nil
}
func (m *stubManager) Enqueue(ctx context.Context, recordID string) error {
	m.enqueued = append(m.enqueued, recordID)
	return nil
}
func (m *stubManager) Cancel(ctx context.Context, recordID string) error {
	m.cancelled = append(m.cancelled, recordID)
	return m.cancelErr
}

type stubStorage struct {
	deleted []string
	url     string
}

func (s *stubStorage) UploadFile(ctx context.Context, localPath string, opts storage.UploadOptions) (string, error) {
	return "s3://test-bucket/" + opts.Key, nil
}

func (s *stubStorage) ListObjects(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (s *stubStorage) DeleteObject(ctx context.Context, bucket, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *stubStorage) GetObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	return s.url, nil
}

type testEnv struct {
	router  *gin.Engine
	uploads service.UploadService
	manager *stubManager
	store   *stubStorage
	dataDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	catRepo := sqlite.NewCatalogRepository(db, sqlite.TableCategories)
	serverRepo := sqlite.NewServerRepository(db)
	uploadRepo := sqlite.NewUploadRepository(db)
	for name, init := range map[string]func(context.Context) error{
		"users":      userRepo.Init,
		"categories": catRepo.Init,
		"servers":    serverRepo.Init,
		"uploads":    uploadRepo.Init,
	} {
		if err := init(ctx); err != nil {
			t.Fatalf("init %s schema: %v", name, err)
		}
	}

	hasher := auth.BcryptHasher{Cost: 4}
	registry := auth.NewRegistry(
		auth.NewEmailStrategy(userRepo, hasher),
		auth.NewGuestStrategy(userRepo),
	)
	tokens := auth.NewTokenService("test-secret", 15*time.Minute, 720*time.Hour)
	authSvc := auth.NewService(registry, tokens, userRepo)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env := &testEnv{
		uploads: service.NewUploadService(uploadRepo),
		manager: &stubManager{},
		store:   &stubStorage{url: "https://signed.example/object"},
		dataDir: t.TempDir(),
	}

	handler := NewHandler(
		authSvc,
		CookieConfig{AccessDays: 7, RefreshDays: 30, AccessDaysLong: 30, RefreshDaysLong: 60},
		map[string]service.CatalogService{"categories": service.NewCatalogService(catRepo)},
		service.NewServerService(serverRepo),
		env.uploads,
		env.manager,
		env.store,
		"test-bucket",
		"catalog-uploads",
		env.dataDir,
		logger,
	)

	env.router = gin.New()
	handler.RegisterRoutes(env.router)
	return env
}

type requestOpts struct {
	headers map[string]string
	cookies []*http.Cookie
}

func (e *testEnv) do(t *testing.T, method, path string, body any, opts *requestOpts) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts != nil {
		for k, v := range opts.headers {
			req.Header.Set(k, v)
		}
		for _, c := range opts.cookies {
			req.AddCookie(c)
		}
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func (e *testEnv) registerUser(t *testing.T, email, password string) SessionResponse {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/register", gin.H{
		"method":  "email",
		"payload": gin.H{"email": email, "password": password, "name": "Test"},
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[SessionResponse](t, rec)
}

func (e *testEnv) bearer(token string) *requestOpts {
	return &requestOpts{headers: map[string]string{"Authorization": "Bearer " + token}}
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set; got %v", name, rec.Result().Cookies())
	return nil
}
