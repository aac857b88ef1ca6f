package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"moviehub/pkg/models"
)

// WriteError maps a repo/engine error onto the HTTP status the admin
// dashboard expects: 400 for validation, 404 missing, 409 conflict,
// 503 storage trouble, 500 otherwise.
func WriteError(c *gin.Context, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	case errors.Is(err, models.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
