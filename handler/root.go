package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	greeting    = "Hello from Gin on ECS Fargate!"
	pingTimeout = 2 * time.Second
)

// Root returns the static greeting.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": greeting})
}

// Ping reports whether the database answers.
func (h *Handler) Ping(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	if err := h.sessions.Ping(ctx); err != nil {
		h.log.Warnw("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"message": "pong",
			"status":  "degraded",
			"error":   "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
		"status":  "ok",
	})
}

type itemURI struct {
	ItemID int `uri:"item_id"`
}

// ReadItem echoes the item id and the optional q query parameter.
func (h *Handler) ReadItem(c *gin.Context) {
	var uri itemURI
	if err := c.ShouldBindUri(&uri); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id must be an integer"})
		return
	}

	var q *string
	if v, ok := c.GetQuery("q"); ok {
		q = &v
	}

	c.JSON(http.StatusOK, gin.H{"item_id": uri.ItemID, "q": q})
}
