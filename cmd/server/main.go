package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"infra-catalog/internal/auth"
	"infra-catalog/internal/config"
	"infra-catalog/internal/firebase"
	apphttp "infra-catalog/internal/http"
	"infra-catalog/internal/repository/sqlite"
	"infra-catalog/internal/service"
	"infra-catalog/internal/storage"
	"infra-catalog/internal/uploader"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	serverRepo := sqlite.NewServerRepository(db)
	uploadRepo := sqlite.NewUploadRepository(db)
	catalogTables := map[string]string{
		"categories":        sqlite.TableCategories,
		"operating-systems": sqlite.TableOperatingSystems,
		"tags":              sqlite.TableTags,
		"locations":         sqlite.TableLocations,
	}

	catalogs := make(map[string]service.CatalogService, len(catalogTables))
	for path, table := range catalogTables {
		repo := sqlite.NewCatalogRepository(db, table)
		if err := repo.Init(ctx); err != nil {
			logger.Fatalf("init %s repository: %v", table, err)
		}
		catalogs[path] = service.NewCatalogService(repo)
	}
	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := serverRepo.Init(ctx); err != nil {
		logger.Fatalf("init server repository: %v", err)
	}
	if err := uploadRepo.Init(ctx); err != nil {
		logger.Fatalf("init upload repository: %v", err)
	}

	hasher := auth.BcryptHasher{}
	strategies := []auth.Strategy{
		auth.NewEmailStrategy(userRepo, hasher),
		auth.NewCodeStrategy(userRepo),
		auth.NewGuestStrategy(userRepo),
		auth.NewPhoneStrategy(userRepo, hasher),
	}
	if cfg.Firebase.APIKey != "" {
		verifier, err := firebase.Init(firebase.Config{APIKey: cfg.Firebase.APIKey})
		if err != nil {
			logger.Fatalf("init firebase verifier: %v", err)
		}
		defer firebase.Shutdown()
		strategies = append(strategies, auth.NewFederatedStrategy(userRepo, verifier))
	} else {
		logger.Warn("firebase api key not set, federated login disabled")
	}

	tokens := auth.NewTokenService(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.AccessTTLMinutes)*time.Minute,
		time.Duration(cfg.Auth.RefreshTTLHours)*time.Hour,
	)
	authService := auth.NewService(auth.NewRegistry(strategies...), tokens, userRepo)

	uploadService := service.NewUploadService(uploadRepo)
	serverService := service.NewServerService(serverRepo)

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	manager := uploader.NewManager(uploader.Config{
		DataDir:       cfg.Upload.DataDir,
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		Bucket:        cfg.Storage.Bucket,
		Logger:        logger,
	}, uploadService, storageSvc)

	if err := manager.Start(ctx); err != nil {
		logger.Fatalf("start upload manager: %v", err)
	}
	if err := manager.Resume(ctx); err != nil {
		logger.Warnf("resume uploads: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		authService,
		apphttp.CookieConfig{
			AccessDays:      cfg.Auth.CookieDays,
			RefreshDays:     cfg.Auth.CookieRefreshDays,
			AccessDaysLong:  cfg.Auth.CookieDaysLong,
			RefreshDaysLong: cfg.Auth.CookieRefreshDaysLong,
		},
		catalogs,
		serverService,
		uploadService,
		manager,
		storageSvc,
		cfg.Storage.Bucket,
		cfg.Storage.KeyPrefix,
		cfg.Upload.DataDir,
		logger,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	manager.Shutdown()

	logger.Info("bye")
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}
