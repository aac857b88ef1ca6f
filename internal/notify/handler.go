package notify

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"moviehub/internal/api"
	"moviehub/internal/auth"
	"moviehub/internal/events"
)

type Handler struct {
	Repo   *Repo
	Server *Server
	Hub    *events.Hub
}

func NewHandler(repo *Repo, server *Server, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Server: server, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/notifications/send", h.send)
	rg.GET("/notifications", h.list)
}

type sendReq struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	TargetType string `json:"target_type"`
}

func (h *Handler) send(c *gin.Context) {
	var req sendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	n, err := h.Repo.Record(c.Request.Context(), req.Title, req.Message, req.TargetType, 0, auth.CallerID(c))
	if err != nil {
		api.WriteError(c, err)
		return
	}

	sent := 0
	if h.Server != nil {
		sent = h.Server.Broadcast(*n)
		if sent > 0 {
			if err := h.Repo.UpdateSentCount(c.Request.Context(), n.ID, sent); err != nil {
				api.WriteError(c, err)
				return
			}
		}
	}
	n.SentCount = sent

	if h.Hub != nil {
		h.Hub.Broadcast(events.AdminEvent{
			Type:    events.TypeNotificationSent,
			Message: n.Title,
			RefID:   n.ID,
			At:      time.Now().UTC(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"notification": n,
		"sent_count":   sent,
	})
}

func (h *Handler) list(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	items, err := h.Repo.List(c.Request.Context(), limit)
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": items,
		"total":         len(items),
	})
}
