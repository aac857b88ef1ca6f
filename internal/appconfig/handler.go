package appconfig

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moviehub/internal/api"
	"moviehub/internal/auth"
)

type Handler struct {
	Store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/config", h.getAll)
	rg.PUT("/config", h.update)
}

func (h *Handler) getAll(c *gin.Context) {
	entries, err := h.Store.GetAll(c.Request.Context())
	if err != nil {
		api.WriteError(c, err)
		return
	}

	// keyed map so the dashboard can index without scanning
	out := make(gin.H, len(entries))
	for _, e := range entries {
		out[e.Key] = gin.H{
			"value":         e.Value,
			"type":          e.Type,
			"default_value": e.DefaultValue,
			"description":   e.Description,
			"updated_at":    e.UpdatedAt,
			"updated_by":    e.UpdatedBy,
		}
	}
	c.JSON(http.StatusOK, gin.H{"config": out})
}

type updateReq struct {
	Updates map[string]string `json:"updates"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.Store.UpdateBatch(c.Request.Context(), req.Updates, auth.CallerID(c)); err != nil {
		api.WriteError(c, err)
		return
	}

	entries, err := h.Store.GetAll(c.Request.Context())
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "config updated",
		"updated": len(req.Updates),
		"config":  entries,
	})
}
