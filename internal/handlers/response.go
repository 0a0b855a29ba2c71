package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pgstays/pg-booking-backend/internal/models"
)

// respondError translates domain errors into HTTP responses. Anything
// that is not a models.DomainError becomes a 500 with a generic body so
// database details never leak to clients.
func respondError(c *gin.Context, err error) {
	kind := models.KindOf(err)

	var status int
	switch kind {
	case models.ErrInvalid:
		status = http.StatusBadRequest
	case models.ErrNotFound:
		status = http.StatusNotFound
	case models.ErrConflict, models.ErrInvalidState:
		status = http.StatusConflict
	case models.ErrForbidden:
		status = http.StatusForbidden
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  string(kind),
	})
}
