package links

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"moviehub/internal/api"
	"moviehub/internal/auth"
	"moviehub/internal/events"
)

type Handler struct {
	Repo *Repo
	Hub  *events.Hub
}

func NewHandler(repo *Repo, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/manual-links", h.list)
	rg.POST("/manual-links", h.create)
	rg.DELETE("/manual-links/:id", h.remove)
	rg.PUT("/manual-links/:id/entries/:entryID", h.updateEntry)
	rg.DELETE("/manual-links/:id/entries/:entryID", h.removeEntry)
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Search: c.Query("search"),
		Page:   parseInt(c.Query("page"), 1),
		Limit:  parseInt(c.Query("limit"), 50),
	}

	items, total, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"links": items,
		"total": total,
		"page":  q.Page,
	})
}

type entryReq struct {
	SourceName string `json:"source_name"`
	SourceURL  string `json:"source_url"`
	Priority   int    `json:"priority"`
	Status     string `json:"status"`
}

type createReq struct {
	TmdbID     *int64     `json:"tmdb_id"`
	MovieTitle string     `json:"movie_title"`
	Year       *int       `json:"year"`
	Language   string     `json:"language"`
	PosterURL  string     `json:"poster_url"`
	Links      []entryReq `json:"links"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	in := AddInput{
		Identity: MovieIdentity{
			TmdbID: req.TmdbID,
			Title:  strings.TrimSpace(req.MovieTitle),
			Year:   req.Year,
		},
		Language:  req.Language,
		PosterURL: req.PosterURL,
		AddedBy:   auth.CallerID(c),
	}
	for _, e := range req.Links {
		in.Entries = append(in.Entries, EntryInput{
			SourceName: strings.TrimSpace(e.SourceName),
			SourceURL:  strings.TrimSpace(e.SourceURL),
			Priority:   e.Priority,
			Status:     e.Status,
		})
	}

	link, err := h.Repo.AddLink(c.Request.Context(), in)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	if h.Hub != nil {
		h.Hub.Broadcast(events.AdminEvent{
			Type:    events.TypeLinkCreated,
			Message: link.MovieTitle,
			RefID:   link.ID,
			At:      link.CreatedAt,
		})
	}
	c.JSON(http.StatusCreated, link)
}

func (h *Handler) remove(c *gin.Context) {
	id := c.Param("id")
	if err := h.Repo.Remove(c.Request.Context(), id); err != nil {
		api.WriteError(c, err)
		return
	}

	if h.Hub != nil {
		h.Hub.Broadcast(events.AdminEvent{
			Type:  events.TypeLinkDeleted,
			RefID: id,
			At:    time.Now().UTC(),
		})
	}
	c.Status(http.StatusNoContent)
}

type updateEntryReq struct {
	Priority *int    `json:"priority"`
	Status   *string `json:"status"`
}

func (h *Handler) updateEntry(c *gin.Context) {
	entryID, err := strconv.ParseInt(c.Param("entryID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	var req updateEntryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if err := h.Repo.UpdateEntry(c.Request.Context(), c.Param("id"), entryID, req.Priority, req.Status); err != nil {
		api.WriteError(c, err)
		return
	}

	link, err := h.Repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *Handler) removeEntry(c *gin.Context) {
	entryID, err := strconv.ParseInt(c.Param("entryID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	if err := h.Repo.RemoveEntry(c.Request.Context(), c.Param("id"), entryID); err != nil {
		api.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
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
