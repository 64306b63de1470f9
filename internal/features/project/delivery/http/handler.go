package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-builders/todo-backend/internal/common/httputil"
	"github.com/open-builders/todo-backend/internal/features/project/models"
	"github.com/open-builders/todo-backend/internal/features/project/service"
)

// Sharing is the part of the sharing manager exposed over HTTP.
type Sharing interface {
	GenerateShareCode(ctx context.Context, projectID, userID int64) (string, error)
	RotateShareCode(ctx context.Context, projectID, userID int64) (string, error)
	JoinProject(ctx context.Context, code string, userID int64) (*models.Summary, error)
	ListMembers(ctx context.Context, projectID, userID int64) ([]models.Member, error)
	RemoveMember(ctx context.Context, projectID, ownerID, memberID int64) error
}

type ProjectHandler struct {
	projects service.ProjectService
	sharing  Sharing
	joinMW   []gin.HandlerFunc
}

// NewProjectHandler builds the handler. joinMiddleware runs in front of the
// join endpoint only, typically a rate limiter.
func NewProjectHandler(projects service.ProjectService, sharing Sharing, joinMiddleware ...gin.HandlerFunc) *ProjectHandler {
	return &ProjectHandler{projects: projects, sharing: sharing, joinMW: joinMiddleware}
}

func (h *ProjectHandler) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.POST("", h.create)
		projects.GET("", h.list)
		projects.POST("/join", append(h.joinMW, h.join)...)
		projects.GET("/:id", h.get)
		projects.PATCH("/:id", h.update)
		projects.DELETE("/:id", h.delete)
		projects.POST("/:id/share", h.share)
		projects.GET("/:id/members", h.members)
		projects.DELETE("/:id/members/:userId", h.removeMember)
	}
}

type createRequest struct {
	Name        string `json:"name" binding:"required" example:"Groceries"`
	Description string `json:"description" example:"Weekly shopping"`
}

type updateRequest struct {
	Name        *string `json:"name" example:"Groceries"`
	Description *string `json:"description" example:""`
}

type joinRequest struct {
	Code string `json:"code" binding:"required" example:"AB12CD"`
}

// ShareResponse carries the project's share code.
type ShareResponse struct {
	ShareCode string `json:"shareCode" example:"AB12CD"`
}

// @Summary Create project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Security TelegramInitData
// @Param input body createRequest true "Project"
// @Success 201 {object} models.Project
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "Name already used by this owner"
// @Router /projects [post]
func (h *ProjectHandler) create(c *gin.Context) {
	userID, err := httputil.UserID(c)
	if err != nil {
		httputil.Abort(c, err, nil)
		return
	}
	var req createRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.Abort(c, err, nil)
		return
	}

	p, err := h.projects.Create(c.Request.Context(), userID, service.CreateInput{Name: req.Name, Description: req.Description})
	if err != nil {
		httputil.Abort(c, err, MapError)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary List owned and shared projects
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Security TelegramInitData
// @Success 200 {array} models.Membership
// @Router /projects [get]
func (h *ProjectHandler) list(c *gin.Context) {
	userID, err := httputil.UserID(c)
	if err != nil {
		httputil.Abort(c, err, nil)
		return
	}
	items, err := h.projects.List(c.Request.Context(), userID)
	if err != nil {
		httputil.Abort(c, err, MapError)
		return
	}
	c.JSON(http.StatusOK, items)
}

// @Summary Get project with categories and tasks
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Security TelegramInitData
// @Param id path int true "Project ID"
// @Success 200 {object} models.Summary
// @Failure 404 {object} middleware.ErrorResponse
// @Router /projects/{id} [get]
func (h *ProjectHandler) get(c *gin.Context) {
	userID, projectID, ok := h.ids(c)
	if !ok {
		return
	}
	summary, err := h.projects.Get(c.Request.Context(), projectID, userID)
	if err != nil {
		httputil.Abort(c, err, MapError)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Update project
// @Description Only the owner may update a project.
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Security TelegramInitData
// @Param id path int true "Project ID"
// @Param input body updateRequest true "Changed fields"
// @Success 200 {object} models.Project
// @Failure 403 {object} middleware.ErrorResponse
// @Router /projects/{id} [patch]
func (h *ProjectHandler) update(c *gin.Context) {
	userID, projectID, ok := h.ids(c)
	if !ok {
		return
	}
	var req updateRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.Abort(c, err, nil)
		return
	}

	p, err := h.projects.Update(c.Request.Context(), projectID, userID, service.UpdateInput{Name: req.Name, Description: req.Description})
	if err != nil {
		httputil.Abort(c, err, MapError)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Delete project
// @Tags projects
// @Security BearerAuth
// @Security TelegramInitData
// @Param id path int true "Project ID"
// @Success 204
// @Failure 403 {object} middleware.ErrorResponse
// @Router /projects/{id} [delete]
func (h *ProjectHandler) delete(c *gin.Context) {
	userID, projectID, ok := h.ids(c)
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), projectID, userID); err != nil {
		httputil.Abort(c, err, MapError)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Get or create the share code
// @Description Returns the project's share code, creating it on first call. With rotate=true
// @Description a new code replaces the old one when rotation is enabled.
// @Tags sharing
// @Produce json
// @Security BearerAuth
// @Security TelegramInitData
// @Param id path int true "Project ID"
// @Param rotate query bool false "Replace the existing code"
// @Success 200 {object} ShareResponse
// @Failure 403 {object} middleware.ErrorResponse "Not the owner"
// @Failure 503 {object} middleware.ErrorResponse "No free code found"
// @Router /projects/{id}/share [post]
func (h *ProjectHandler) share(c *gin.Context) {
	userID, projectID, ok := h.ids(c)
	if !ok {
		return
	}

	var (
		code string
		err  error
	)
	if c.Query("rotate") == "true" {
		code, err = h.sharing.RotateShareCode(c.Request.Context(), projectID, userID)
	} else {
		code, err = h.sharing.GenerateShareCode(c.Request.Context(), projectID, userID)
	}
	if err != nil {
		httputil.Abort(c, err, MapError)
		return
	}
	c.JSON(http.StatusOK, ShareResponse{ShareCode: code})
}

// @Summary Join a project by share code
// @Tags sharing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Security TelegramInitData
// @Param input body joinRequest true "Share code"
// @Success 200 {object} models.Summary
// @Failure 404 {object} middleware.ErrorResponse "Unknown code"
// @Failure 409 {object} middleware.ErrorResponse "Already owner or member"
// @Failure 429 {object} middleware.ErrorResponse
// @Router /projects/join [post]
func (h *ProjectHandler) join(c *gin.Context) {
	userID, err := httputil.UserID(c)
	if err != nil {
		httputil.Abort(c, err, nil)
		return
	}
	var req joinRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.Abort(c, err, nil)
		return
	}

	summary, err := h.sharing.JoinProject(c.Request.Context(), req.Code, userID)
	if err != nil {
		httputil.Abort(c, err, MapError)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary List project members
// @Tags sharing
// @Produce json
// @Security BearerAuth
// @Security TelegramInitData
// @Param id path int true "Project ID"
// @Success 200 {array} models.Member
// @Router /projects/{id}/members [get]
func (h *ProjectHandler) members(c *gin.Context) {
	userID, projectID, ok := h.ids(c)
	if !ok {
		return
	}
	members, err := h.sharing.ListMembers(c.Request.Context(), projectID, userID)
	if err != nil {
		httputil.Abort(c, err, MapError)
		return
	}
	c.JSON(http.StatusOK, members)
}

// @Summary Remove a member
// @Tags sharing
// @Security BearerAuth
// @Security TelegramInitData
// @Param id path int true "Project ID"
// @Param userId path int true "Member user ID"
// @Success 204
// @Failure 403 {object} middleware.ErrorResponse
// @Router /projects/{id}/members/{userId} [delete]
func (h *ProjectHandler) removeMember(c *gin.Context) {
	userID, projectID, ok := h.ids(c)
	if !ok {
		return
	}
	memberID, err := httputil.PathID(c, "userId")
	if err != nil {
		httputil.Abort(c, err, nil)
		return
	}
	if err := h.sharing.RemoveMember(c.Request.Context(), projectID, userID, memberID); err != nil {
		httputil.Abort(c, err, MapError)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) ids(c *gin.Context) (userID, projectID int64, ok bool) {
	userID, err := httputil.UserID(c)
	if err != nil {
		httputil.Abort(c, err, nil)
		return 0, 0, false
	}
	projectID, err = httputil.PathID(c, "id")
	if err != nil {
		httputil.Abort(c, err, nil)
		return 0, 0, false
	}
	return userID, projectID, true
}
