package resolve

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"moviehub/internal/api"
	"moviehub/internal/links"
	"moviehub/pkg/models"
)

type Handler struct {
	Engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{Engine: engine}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resolve", h.resolve)
}

func (h *Handler) resolve(c *gin.Context) {
	identity := links.MovieIdentity{
		Title: c.Query("title"),
	}
	if raw := c.Query("tmdb_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			api.WriteError(c, models.NewValidationError("tmdb_id", "must be an integer"))
			return
		}
		identity.TmdbID = &id
	}
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			api.WriteError(c, models.NewValidationError("year", "must be an integer"))
			return
		}
		identity.Year = &y
	}

	res, err := h.Engine.Resolve(c.Request.Context(), identity)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"movie_key":        res.MovieKey,
		"manual":           res.Manual(),
		"candidates":       res.Candidates,
		"fallback_sources": res.FallbackSources,
	})
}
