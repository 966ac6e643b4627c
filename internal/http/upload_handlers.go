package http

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"infra-catalog/internal/domain"
)

type UploadResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	Status       string `json:"status"`
	Progress     int    `json:"progress"`
	Location     string `json:"location,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	CreatedAt    string `json:"created_at"`
	UploadedAt   *string `json:"uploaded_at,omitempty"`
}

func (h *Handler) mountUploads(g *gin.RouterGroup) {
	g.POST("", h.createUpload)
	g.GET("", h.listUploads)
	g.GET("/:id", h.getUpload)
	g.GET("/:id/url", h.uploadURL)
	g.DELETE("/:id", h.deleteUpload)
}

func (h *Handler) createUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		h.badRequest(c, "file is required")
		return
	}

	name := filepath.Base(file.Filename)
	localPath := filepath.Join(h.dataDir, fmt.Sprintf("%s-%s", uuid.NewString(), name))
	if err := c.SaveUploadedFile(file, localPath); err != nil {
		h.writeError(c, fmt.Errorf("save uploaded file: %w", err))
		return
	}

	record, err := h.uploads.CreateUpload(c.Request.Context(), name, localPath, file.Size, h.prefix)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.manager.Enqueue(c.Request.Context(), record.ID); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, uploadToResponse(*record))
}

func (h *Handler) listUploads(c *gin.Context) {
	records, err := h.uploads.ListUploads(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := make([]UploadResponse, len(records))
	for i := range records {
		resp[i] = uploadToResponse(records[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getUpload(c *gin.Context) {
	record, err := h.uploads.GetUpload(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, uploadToResponse(*record))
}

func (h *Handler) uploadURL(c *gin.Context) {
	record, err := h.uploads.GetUpload(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if record.Status != domain.UploadStatusCompleted {
		h.badRequest(c, "upload is not completed")
		return
	}

	url, err := h.storage.GetObjectURL(c.Request.Context(), h.bucket, record.ObjectKey, 15*time.Minute)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) deleteUpload(c *gin.Context) {
	record, err := h.uploads.GetUpload(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	var warnings []string
	cancelCtx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()
	if err := h.manager.Cancel(cancelCtx, record.ID); err != nil {
		warnings = append(warnings, fmt.Sprintf("cancel upload: %v", err))
	}

	// completed uploads already had their local copy removed
	if record.LocalPath != "" {
		if err := os.Remove(record.LocalPath); err != nil && !os.IsNotExist(err) {
			warnings = append(warnings, fmt.Sprintf("remove local file: %v", err))
		}
	}

	if record.Status == domain.UploadStatusCompleted && h.storage != nil && h.bucket != "" {
		remoteCtx, cancelRemote := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancelRemote()
		if err := h.storage.DeleteObject(remoteCtx, h.bucket, record.ObjectKey); err != nil {
			warnings = append(warnings, fmt.Sprintf("delete remote object: %v", err))
		}
	}

	if err := h.uploads.DeleteUpload(c.Request.Context(), record.ID); err != nil {
		h.writeError(c, err)
		return
	}

	resp := gin.H{"deleted": record.ID}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	c.JSON(http.StatusOK, resp)
}


func uploadToResponse(record domain.UploadRecord) UploadResponse {
	resp := UploadResponse{
		ID:           record.ID,
		Name:         record.Name,
		Size:         record.Size,
		Status:       string(record.Status),
		Progress:     record.Progress,
		Location:     record.Location,
		ErrorMessage: record.ErrorMessage,
		CreatedAt:    record.CreatedAt.Format(time.RFC3339),
	}
	if record.UploadedAt != nil {
		v := record.UploadedAt.Format(time.RFC3339)
		resp.UploadedAt = &v
	}
	return resp
}
