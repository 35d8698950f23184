package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sessions is the part of db.Provider the handlers use.
type Sessions interface {
	WithSession(ctx context.Context, fn func(tx *gorm.DB) error) error
	Ping(ctx context.Context) error
}

// Handler serves the HTTP API.
type Handler struct {
	log      *zap.SugaredLogger
	sessions Sessions
}

// New builds a Handler around the injected session provider.
func New(log *zap.SugaredLogger, sessions Sessions) *Handler {
	return &Handler{
		log:      log.Named("http"),
		sessions: sessions,
	}
}

// NewRouter wires middleware and routes onto a fresh gin engine.
func NewRouter(h *Handler, requestTimeout time.Duration) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(h.log))
	r.Use(RequestLogger(h.log))
	r.Use(RequestTimeout(requestTimeout))
	r.Use(CORS())

	r.GET("/", h.Root)
	r.GET("/ping", h.Ping)
	r.GET("/items/:item_id", h.ReadItem)

	users := r.Group("/users")
	{
		users.POST("/", h.CreateUser)
		users.GET("/", h.ListUsers)
	}

	return r
}
