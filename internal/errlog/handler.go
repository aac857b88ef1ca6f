package errlog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"moviehub/internal/api"
	"moviehub/internal/auth"
	"moviehub/internal/events"
	"moviehub/pkg/models"
)

type Handler struct {
	Repo *Repo
	Hub  *events.Hub
}

func NewHandler(repo *Repo, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

// RegisterRoutes wires the operator-facing endpoints. clearAll is
// separately gated behind super_admin.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/errors", h.list)
	rg.PUT("/errors/:id/resolve", h.resolve)
	rg.DELETE("/errors", auth.RequireRole(models.RoleSuperAdmin), h.clearAll)
}

// RegisterIngestRoutes wires the unauthenticated ingest endpoint used
// by scrapers and the app.
func (h *Handler) RegisterIngestRoutes(rg *gin.RouterGroup) {
	rg.POST("/log-error", h.record)
}

type recordReq struct {
	Severity   string         `json:"severity"`
	Source     string         `json:"source"`
	ErrorType  string         `json:"error_type"`
	Message    string         `json:"message"`
	StackTrace string         `json:"stack_trace"`
	Metadata   map[string]any `json:"metadata"`
}

func (h *Handler) record(c *gin.Context) {
	var req recordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message required"})
		return
	}

	ev, err := h.Repo.Record(c.Request.Context(), RecordInput{
		Severity:   req.Severity,
		Source:     req.Source,
		ErrorType:  req.ErrorType,
		Message:    req.Message,
		StackTrace: req.StackTrace,
		Metadata:   req.Metadata,
	})
	if err != nil {
		api.WriteError(c, err)
		return
	}

	if h.Hub != nil {
		h.Hub.Broadcast(events.ErrorRecorded(ev.ID, ev.Source, ev.Severity, ev.Message))
	}

	c.JSON(http.StatusCreated, ev)
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Severity: c.Query("severity"),
		Page:     parseInt(c.Query("page"), 1),
		Limit:    parseInt(c.Query("limit"), 100),
	}
	if s := c.Query("resolved"); s != "" {
		resolved := s == "true" || s == "1"
		q.Resolved = &resolved
	}

	items, total, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"errors": items,
		"total":  total,
		"page":   q.Page,
	})
}

func (h *Handler) resolve(c *gin.Context) {
	ev, err := h.Repo.Resolve(c.Request.Context(), c.Param("id"), auth.CallerID(c))
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (h *Handler) clearAll(c *gin.Context) {
	n, err := h.Repo.ClearAll(c.Request.Context())
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": n})
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
