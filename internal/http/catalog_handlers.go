package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"infra-catalog/internal/domain"
	"infra-catalog/internal/service"
)

type catalogEntryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CatalogEntryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type ListResponse struct {
	Items   any   `json:"items"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

func (h *Handler) mountCatalog(group *gin.RouterGroup, path string, svc service.CatalogService) {
	g := group.Group("/" + path)
	g.POST("", h.createEntry(svc))
	g.GET("", h.listEntries(svc))
	g.GET("/:id", h.getEntry(svc))
	g.PUT("/:id", h.updateEntry(svc))
	g.DELETE("/:id", h.deleteEntry(svc))
	g.POST("/:id/restore", h.restoreEntry(svc))
}

func (h *Handler) createEntry(svc service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalogEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, err.Error())
			return
		}
		entry, err := svc.Create(c.Request.Context(), req.Name, req.Description)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, entryToResponse(*entry))
	}
}

func (h *Handler) getEntry(svc service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.entryID(c)
		if !ok {
			return
		}
		entry, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, entryToResponse(*entry))
	}
}

func (h *Handler) updateEntry(svc service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.entryID(c)
		if !ok {
			return
		}
		var req catalogEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, err.Error())
			return
		}
		entry, err := svc.Update(c.Request.Context(), id, req.Name, req.Description)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, entryToResponse(*entry))
	}
}

func (h *Handler) deleteEntry(svc service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.entryID(c)
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}

func (h *Handler) restoreEntry(svc service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.entryID(c)
		if !ok {
			return
		}
		if err := svc.Restore(c.Request.Context(), id); err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"restored": id})
	}
}

func (h *Handler) listEntries(svc service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage := pageParams(c)
		entries, paging, err := svc.List(c.Request.Context(), page, perPage)
		if err != nil {
			h.writeError(c, err)
			return
		}
		items := make([]CatalogEntryResponse, len(entries))
		for i := range entries {
			items[i] = entryToResponse(entries[i])
		}
		c.JSON(http.StatusOK, ListResponse{
			Items:   items,
			Page:    paging.Page,
			PerPage: paging.PerPage,
			Total:   paging.Total,
		})
	}
}

func (h *Handler) entryID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", "20"))
	return page, perPage
}

func entryToResponse(entry domain.CatalogEntry) CatalogEntryResponse {
	return CatalogEntryResponse{
		ID:          entry.ID,
		Name:        entry.Name,
		Description: entry.Description,
		CreatedAt:   entry.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   entry.UpdatedAt.Format(time.RFC3339),
	}
}

type serverRequest struct {
	Name       string  `json:"name" binding:"required"`
	IPAddress  string  `json:"ip_address"`
	CategoryID int64   `json:"category_id"`
	OSID       int64   `json:"os_id"`
	LocationID int64   `json:"location_id"`
	TagIDs     []int64 `json:"tag_ids"`
	Notes      string  `json:"notes"`
}

type ServerResponse struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	IPAddress  string  `json:"ip_address"`
	CategoryID int64   `json:"category_id"`
	OSID       int64   `json:"os_id"`
	LocationID int64   `json:"location_id"`
	TagIDs     []int64 `json:"tag_ids"`
	Notes      string  `json:"notes"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func (h *Handler) mountServers(g *gin.RouterGroup) {
	g.POST("", h.createServer)
	g.GET("", h.listServers)
	g.GET("/:id", h.getServer)
	g.PUT("/:id", h.updateServer)
	g.DELETE("/:id", h.deleteServer)
	g.POST("/:id/restore", h.restoreServer)
}

func (h *Handler) createServer(c *gin.Context) {
	var req serverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	server, err := h.servers.Create(c.Request.Context(), serverInput(req))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, serverToResponse(*server))
}

func (h *Handler) getServer(c *gin.Context) {
	id, ok := h.entryID(c)
	if !ok {
		return
	}
	server, err := h.servers.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, serverToResponse(*server))
}

func (h *Handler) updateServer(c *gin.Context) {
	id, ok := h.entryID(c)
	if !ok {
		return
	}
	var req serverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	server, err := h.servers.Update(c.Request.Context(), id, serverInput(req))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, serverToResponse(*server))
}

func (h *Handler) deleteServer(c *gin.Context) {
	id, ok := h.entryID(c)
	if !ok {
		return
	}
	if err := h.servers.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) restoreServer(c *gin.Context) {
	id, ok := h.entryID(c)
	if !ok {
		return
	}
	if err := h.servers.Restore(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restored": id})
}

func (h *Handler) listServers(c *gin.Context) {
	page, perPage := pageParams(c)
	servers, paging, err := h.servers.List(c.Request.Context(), page, perPage)
	if err != nil {
		h.writeError(c, err)
		return
	}
	items := make([]ServerResponse, len(servers))
	for i := range servers {
		items[i] = serverToResponse(servers[i])
	}
	c.JSON(http.StatusOK, ListResponse{
		Items:   items,
		Page:    paging.Page,
		PerPage: paging.PerPage,
		Total:   paging.Total,
	})
}

func serverInput(req serverRequest) service.ServerInput {
	return service.ServerInput{
		Name:       req.Name,
		IPAddress:  req.IPAddress,
		CategoryID: req.CategoryID,
		OSID:       req.OSID,
		LocationID: req.LocationID,
		TagIDs:     req.TagIDs,
		Notes:      req.Notes,
	}
}

func serverToResponse(server domain.Server) ServerResponse {
	return ServerResponse{
		ID:         server.ID,
		Name:       server.Name,
		IPAddress:  server.IPAddress,
		CategoryID: server.CategoryID,
		OSID:       server.OSID,
		LocationID: server.LocationID,
		TagIDs:     server.TagIDs,
		Notes:      server.Notes,
		CreatedAt:  server.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  server.UpdatedAt.Format(time.RFC3339),
	}
}
