package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"users-service/model"
	"users-service/repository"
)

const (
	errInvalidBody  = "invalid request body"
	errInvalidQuery = "invalid query parameters"
)

// CreateUserRequest is the POST /users/ body. Both fields must be present;
// their content is not checked, uniqueness is left to the database.
type CreateUserRequest struct {
	Username *string `json:"username" binding:"required"`
	Email    *string `json:"email" binding:"required"`
}

// ListUsersQuery holds the GET /users/ pagination parameters.
type ListUsersQuery struct {
	Skip  int `form:"skip,default=0" binding:"min=0"`
	Limit int `form:"limit,default=100" binding:"min=1"`
}

// CreateUser inserts a user and returns it with its assigned id.
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody})
		return
	}

	ctx := c.Request.Context()
	in := model.CreateUser{Username: *req.Username, Email: *req.Email}

	var created *model.User
	err := h.sessions.WithSession(ctx, func(tx *gorm.DB) error {
		u, err := repository.NewUserRepository(tx).Create(ctx, in)
		if err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		h.writeError(c, err, "create user", "username", in.Username)
		return
	}

	h.log.Infow("user created", "id", created.ID, "username", created.Username)
	c.JSON(http.StatusCreated, created)
}

// ListUsers returns one page of users ordered by id.
func (h *Handler) ListUsers(c *gin.Context) {
	var q ListUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidQuery})
		return
	}
	skip, limit := repository.NormalizePage(q.Skip, q.Limit)

	ctx := c.Request.Context()

	var users []model.User
	err := h.sessions.WithSession(ctx, func(tx *gorm.DB) error {
		page, err := repository.NewUserRepository(tx).List(ctx, skip, limit)
		if err != nil {
			return err
		}
		users = page
		return nil
	})
	if err != nil {
		h.writeError(c, err, "list users", "skip", skip, "limit", limit)
		return
	}

	c.JSON(http.StatusOK, users)
}
