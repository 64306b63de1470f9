package http

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/open-builders/todo-backend/internal/common/errors"
	"github.com/open-builders/todo-backend/internal/common/httputil"
	"github.com/open-builders/todo-backend/internal/features/task/models"
	"github.com/open-builders/todo-backend/internal/features/task/service"
)

type TaskHandler struct {
	service service.TaskService
	access  func(error) *errors.AppError
}

func NewTaskHandler(service service.TaskService, accessErrors func(error) *errors.AppError) *TaskHandler {
	return &TaskHandler{service: service, access: accessErrors}
}

func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup) {
	tasks := router.Group("/projects/:id/tasks")
	{
		tasks.POST("", h.create)
		tasks.GET("", h.list)
		tasks.GET("/:taskId", h.get)
		tasks.PATCH("/:taskId", h.update)
		tasks.DELETE("/:taskId", h.delete)
	}
}

func (h *TaskHandler) mapError(err error) *errors.AppError {
	switch {
	case stderrors.Is(err, service.ErrTaskNotFound):
		return errors.Wrap(err, errors.ErrCodeTaskNotFound, "Task not found")
	case stderrors.Is(err, service.ErrCategoryMismatch):
		return errors.NewValidationError("categoryId", err.Error())
	}
	if h.access != nil {
		return h.access(err)
	}
	return nil
}

// @Summary Create task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Security TelegramInitData
// @Param id path int true "Project ID"
// @Param input body createRequest true "Task"
// @Success 201 {object} models.Task
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /projects/{id}/tasks [post]
func (h *TaskHandler) create(c *gin.Context) {
	userID, projectID, ok := ids(c)
	if !ok {
		return
	}
	var req createRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.Abort(c, err, nil)
		return
	}

	task, err := h.service.Create(c.Request.Context(), projectID, userID, service.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		httputil.Abort(c, err, h.mapError)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// @Summary List tasks
// @Description Newest first. All filters are optional.
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Security TelegramInitData
// @Param id path int true "Project ID"
// @Param categoryId query int false "Category ID"
// @Param completed query bool false "Completion state"
// @Param priority query string false "LOW, MEDIUM or HIGH"
// @Success 200 {array} models.Task
// @Router /projects/{id}/tasks [get]
func (h *TaskHandler) list(c *gin.Context) {
	userID, projectID, ok := ids(c)
	if !ok {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		httputil.Abort(c, err, nil)
		return
	}

	tasks, err := h.service.List(c.Request.Context(), projectID, userID, filter)
	if err != nil {
		httputil.Abort(c, err, h.mapError)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary Get task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Security TelegramInitData
// @Param id path int true "Project ID"
// @Param taskId path int true "Task ID"
// @Success 200 {object} models.Task
// @Router /projects/{id}/tasks/{taskId} [get]
func (h *TaskHandler) get(c *gin.Context) {
	userID, projectID, taskID, ok := taskIDs(c)
	if !ok {
		return
	}
	task, err := h.service.Get(c.Request.Context(), projectID, taskID, userID)
	if err != nil {
		httputil.Abort(c, err, h.mapError)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary Update task
// @Description Only the sent fields change. null clears dueDate or categoryId.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Security TelegramInitData
// @Param id path int true "Project ID"
// @Param taskId path int true "Task ID"
// @Param input body updateRequest true "Changed fields"
// @Success 200 {object} models.Task
// @Router /projects/{id}/tasks/{taskId} [patch]
func (h *TaskHandler) update(c *gin.Context) {
	userID, projectID, taskID, ok := taskIDs(c)
	if !ok {
		return
	}
	var req updateRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.Abort(c, err, nil)
		return
	}

	in := service.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Completed:   req.Completed,
	}
	if req.DueDate.Set {
		in.DueDate = req.DueDate.Value
		in.ClearDueDate = req.DueDate.Value == nil
	}
	if req.CategoryID.Set {
		in.CategoryID = req.CategoryID.Value
		in.ClearCategory = req.CategoryID.Value == nil
	}

	task, err := h.service.Update(c.Request.Context(), projectID, taskID, userID, in)
	if err != nil {
		httputil.Abort(c, err, h.mapError)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary Delete task
// @Tags tasks
// @Security BearerAuth
// @Security TelegramInitData
// @Param id path int true "Project ID"
// @Param taskId path int true "Task ID"
// @Success 204
// @Router /projects/{id}/tasks/{taskId} [delete]
func (h *TaskHandler) delete(c *gin.Context) {
	userID, projectID, taskID, ok := taskIDs(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), projectID, taskID, userID); err != nil {
		httputil.Abort(c, err, h.mapError)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseFilter(c *gin.Context) (models.Filter, error) {
	var f models.Filter
	if raw := c.Query("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return f, errors.NewValidationError("categoryId", "must be a positive integer")
		}
		f.CategoryID = &id
	}
	if raw := c.Query("completed"); raw != "" {
		done, err := strconv.ParseBool(raw)
		if err != nil {
			return f, errors.NewValidationError("completed", "must be true or false")
		}
		f.Completed = &done
	}
	if raw := c.Query("priority"); raw != "" {
		p, err := models.ParsePriority(raw)
		if err != nil {
			return f, errors.NewValidationError("priority", "must be LOW, MEDIUM or HIGH")
		}
		f.Priority = &p
	}
	return f, nil
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

func taskIDs(c *gin.Context) (userID, projectID, taskID int64, ok bool) {
	userID, projectID, ok = ids(c)
	if !ok {
		return 0, 0, 0, false
	}
	taskID, err := httputil.PathID(c, "taskId")
	if err != nil {
		httputil.Abort(c, err, nil)
		return 0, 0, 0, false
	}
	return userID, projectID, taskID, true
}
