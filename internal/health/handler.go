package health

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"moviehub/internal/api"
	"moviehub/internal/events"
)

type Handler struct {
	Tracker *Tracker
	Hub     *events.Hub
}

func NewHandler(tracker *Tracker, hub *events.Hub) *Handler {
	return &Handler{Tracker: tracker, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sources", h.list)
	rg.PUT("/sources/:name/toggle", h.toggle)
	rg.POST("/sources/:name/sync-report", h.syncReport)
}

// RegisterIngestRoutes wires the endpoint the fetch pipeline calls
// after every attempt.
func (h *Handler) RegisterIngestRoutes(rg *gin.RouterGroup) {
	rg.POST("/sources/:name/report", h.report)
}

func (h *Handler) list(c *gin.Context) {
	sources, err := h.Tracker.ListSources(c.Request.Context())
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, sources)
}

func (h *Handler) toggle(c *gin.Context) {
	enabled, err := strconv.ParseBool(c.Query("enabled"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enabled must be true or false"})
		return
	}

	s, err := h.Tracker.SetEnabled(c.Request.Context(), c.Param("name"), enabled)
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

type reportReq struct {
	Success   bool    `json:"success"`
	LatencyMs float64 `json:"latency_ms"`
}

func (h *Handler) report(c *gin.Context) {
	var req reportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	s, err := h.Tracker.ReportOutcome(c.Request.Context(), c.Param("name"), req.Success, req.LatencyMs)
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

type syncReportReq struct {
	TotalMovies int `json:"total_movies"`
}

func (h *Handler) syncReport(c *gin.Context) {
	var req syncReportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.TotalMovies < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "total_movies must be >= 0"})
		return
	}

	s, err := h.Tracker.Repo.RecordSync(c.Request.Context(), c.Param("name"), req.TotalMovies)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	if h.Hub != nil {
		h.Hub.Broadcast(events.AdminEvent{
			Type:    events.TypeSyncReported,
			Source:  s.SourceName,
			Message: "sync completed",
			At:      *s.LastSync,
		})
	}
	c.JSON(http.StatusOK, s)
}
