package tmdb

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"moviehub/internal/api"
	"moviehub/pkg/models"
)

type Handler struct {
	Client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{Client: client}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tmdb/search", h.search)
}

func (h *Handler) search(c *gin.Context) {
	query := c.Query("query")

	var year *int
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			api.WriteError(c, models.NewValidationError("year", "must be an integer"))
			return
		}
		year = &y
	}

	results, err := h.Client.Search(c.Request.Context(), query, year)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
	})
}
