package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"users-service/db"
	"users-service/repository"
)

// writeError maps a persistence error to a status code. Internal details are
// logged, never returned to the client.
func (h *Handler) writeError(c *gin.Context, err error, op string, kv ...interface{}) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, repository.ErrDuplicateUser):
		c.JSON(http.StatusConflict, gin.H{"error": repository.ErrDuplicateUser.Error()})
	case errors.Is(err, db.ErrSessionUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		c.Request.Context().Err() != nil:
		h.log.Warnw(op+" unavailable", append(kv, "error", err)...)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})
	default:
		h.log.Errorw(op+" failed", append(kv, "error", err)...)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
