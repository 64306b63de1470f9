package http

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-builders/todo-backend/internal/common/errors"
	"github.com/open-builders/todo-backend/internal/common/httputil"
	projectmodels "github.com/open-builders/todo-backend/internal/features/project/models"
	"github.com/open-builders/todo-backend/internal/features/user/service"
)

// ProjectLister lists the projects a user owns or joined.
type ProjectLister interface {
	List(ctx context.Context, userID int64) ([]projectmodels.Membership, error)
}

type UserHandler struct {
	service  service.UserService
	projects ProjectLister
}

func NewUserHandler(service service.UserService, projects ProjectLister) *UserHandler {
	return &UserHandler{
		service:  service,
		projects: projects,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("/me", h.getMe)
		users.GET("/:id/projects", h.getProjects)
	}
}

func mapError(err error) *errors.AppError {
	if stderrors.Is(err, service.ErrUserNotFound) {
		return errors.Wrap(err, errors.ErrCodeUserNotFound, "User not found")
	}
	return nil
}

// @Summary Get current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Security TelegramInitData
// @Success 200 {object} models.User
// @Failure 401 {object} middleware.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) getMe(c *gin.Context) {
	userID, err := httputil.UserID(c)
	if err != nil {
		httputil.Abort(c, err, nil)
		return
	}
	user, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		httputil.Abort(c, err, mapError)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary List a user's projects
// @Description Users may only list their own projects.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Security TelegramInitData
// @Param id path int true "User ID"
// @Success 200 {array} projectmodels.Membership
// @Failure 403 {object} middleware.ErrorResponse
// @Router /users/{id}/projects [get]
func (h *UserHandler) getProjects(c *gin.Context) {
	userID, err := httputil.UserID(c)
	if err != nil {
		httputil.Abort(c, err, nil)
		return
	}
	id, err := httputil.PathID(c, "id")
	if err != nil {
		httputil.Abort(c, err, nil)
		return
	}
	if id != userID {
		httputil.Abort(c, errors.NewForbiddenError("cannot list projects of another user"), nil)
		return
	}

	items, err := h.projects.List(c.Request.Context(), userID)
	if err != nil {
		httputil.Abort(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, items)
}
