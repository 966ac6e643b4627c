package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"infra-catalog/internal/apperrors"
	"infra-catalog/internal/auth"
	"infra-catalog/internal/repository"
	"infra-catalog/internal/service"
	"infra-catalog/internal/storage"
	"infra-catalog/internal/uploader"
)

// CookieConfig controls session cookie lifetimes. The long variants apply
// when the login payload carries rememberMe.
type CookieConfig struct {
	AccessDays      int
	RefreshDays     int
	AccessDaysLong  int
	RefreshDaysLong int
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth     *auth.Service
	cookies  CookieConfig
	catalogs map[string]service.CatalogService
	servers  service.ServerService
	uploads  service.UploadService
	manager  uploader.Manager
	storage  storage.Service
	bucket   string
	prefix   string
	dataDir  string
	logger   *logrus.Logger
}

func NewHandler(
	authService *auth.Service,
	cookies CookieConfig,
	catalogs map[string]service.CatalogService,
	servers service.ServerService,
	uploads service.UploadService,
	manager uploader.Manager,
	store storage.Service,
	bucket, prefix, dataDir string,
	logger *logrus.Logger,
) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		auth:     authService,
		cookies:  cookies,
		catalogs: catalogs,
		servers:  servers,
		uploads:  uploads,
		manager:  manager,
		storage:  store,
		bucket:   bucket,
		prefix:   prefix,
		dataDir:  dataDir,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", h.login)
		authGroup.POST("/register", h.register)
		authGroup.POST("/refresh", h.refresh)
		authGroup.POST("/logout", h.logout)
		authGroup.GET("/me", h.requireAuth, h.me)
	}

	api := router.Group("/api", h.requireAuth)
	{
		catalog := api.Group("/catalog")
		for path, svc := range h.catalogs {
			h.mountCatalog(catalog, path, svc)
		}
		h.mountServers(catalog.Group("/servers"))
		h.mountUploads(api.Group("/uploads"))
	}

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, Refresh-Token")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// errorEnvelope is the uniform error response shape for every failure.
type errorEnvelope struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	Error      bool   `json:"error"`
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
}

// writeError translates typed failures into the envelope. Unknown errors
// become a redacted 500; credential material and causes never serialize.
func (h *Handler) writeError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			h.logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		c.JSON(appErr.Status, errorEnvelope{
			Title:      appErr.Code,
			Message:    appErr.Error(),
			Error:      true,
			StatusCode: appErr.Status,
		})
		return
	}

	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorEnvelope{
			Title:      "NOT_FOUND",
			Message:    "resource not found",
			Error:      true,
			StatusCode: http.StatusNotFound,
		})
		return
	}

	h.logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, errorEnvelope{
		Title:      "INTERNAL_ERROR",
		Message:    "internal server error",
		Error:      true,
		StatusCode: http.StatusInternalServerError,
	})
}

func (h *Handler) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorEnvelope{
		Title:      "BAD_REQUEST",
		Message:    message,
		Error:      true,
		StatusCode: http.StatusBadRequest,
	})
}
