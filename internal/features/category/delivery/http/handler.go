package http

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-builders/todo-backend/internal/common/errors"
	"github.com/open-builders/todo-backend/internal/common/httputil"
	"github.com/open-builders/todo-backend/internal/features/category/service"
)

type CategoryHandler struct {
	service service.CategoryService
	access  func(error) *errors.AppError
}

// NewCategoryHandler takes accessErrors to map failures of the project
// access check, which this package does not own.
func NewCategoryHandler(service service.CategoryService, accessErrors func(error) *errors.AppError) *CategoryHandler {
	return &CategoryHandler{service: service, access: accessErrors}
}

func (h *CategoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	categories := router.Group("/projects/:id/categories")
	{
		categories.POST("", h.create)
		categories.GET("", h.list)
		categories.PATCH("/:categoryId", h.update)
		categories.DELETE("/:categoryId", h.delete)
	}
}

type createRequest struct {
	Name  string `json:"name" binding:"required" example:"Work"`
	Color string `json:"color" example:"#3390EC"`
}

type updateRequest struct {
	Name  *string `json:"name" example:"Work"`
	Color *string `json:"color" example:"#FF5733"`
}

func (h *CategoryHandler) mapError(err error) *errors.AppError {
	if stderrors.Is(err, service.ErrCategoryNotFound) {
		return errors.Wrap(err, errors.ErrCodeCategoryNotFound, "Category not found")
	}
	if h.access != nil {
		return h.access(err)
	}
	return nil
}

// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Security TelegramInitData
// @Param id path int true "Project ID"
// @Param input body createRequest true "Category"
// @Success 201 {object} models.Category
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /projects/{id}/categories [post]
func (h *CategoryHandler) create(c *gin.Context) {
	userID, projectID, ok := ids(c)
	if !ok {
		return
	}
	var req createRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.Abort(c, err, nil)
		return
	}

	category, err := h.service.Create(c.Request.Context(), projectID, userID, service.CreateInput{Name: req.Name, Color: req.Color})
	if err != nil {
		httputil.Abort(c, err, h.mapError)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// @Summary List categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Security TelegramInitData
// @Param id path int true "Project ID"
// @Success 200 {array} models.Category
// @Router /projects/{id}/categories [get]
func (h *CategoryHandler) list(c *gin.Context) {
	userID, projectID, ok := ids(c)
	if !ok {
		return
	}
	categories, err := h.service.List(c.Request.Context(), projectID, userID)
	if err != nil {
		httputil.Abort(c, err, h.mapError)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// @Summary Update category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Security TelegramInitData
// @Param id path int true "Project ID"
// @Param categoryId path int true "Category ID"
// @Param input body updateRequest true "Changed fields"
// @Success 200 {object} models.Category
// @Router /projects/{id}/categories/{categoryId} [patch]
func (h *CategoryHandler) update(c *gin.Context) {
	userID, projectID, ok := ids(c)
	if !ok {
		return
	}
	categoryID, err := httputil.PathID(c, "categoryId")
	if err != nil {
		httputil.Abort(c, err, nil)
		return
	}
	var req updateRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.Abort(c, err, nil)
		return
	}

	category, err := h.service.Update(c.Request.Context(), projectID, categoryID, userID, service.UpdateInput{Name: req.Name, Color: req.Color})
	if err != nil {
		httputil.Abort(c, err, h.mapError)
		return
	}
	c.JSON(http.StatusOK, category)
}

// @Summary Delete category
// @Description Tasks of the category stay in the project without a category.
// @Tags categories
// @Security BearerAuth
// @Security TelegramInitData
// @Param id path int true "Project ID"
// @Param categoryId path int true "Category ID"
// @Success 204
// @Router /projects/{id}/categories/{categoryId} [delete]
func (h *CategoryHandler) delete(c *gin.Context) {
	userID, projectID, ok := ids(c)
	if !ok {
		return
	}
	categoryID, err := httputil.PathID(c, "categoryId")
	if err != nil {
		httputil.Abort(c, err, nil)
		return
	}
	if err := h.service.Delete(c.Request.Context(), projectID, categoryID, userID); err != nil {
		httputil.Abort(c, err, h.mapError)
		return
	}
	c.Status(http.StatusNoContent)
}

func ids(c *gin.Context) (userID, projectID int64, ok bool) {
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
