package http

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-builders/todo-backend/internal/common/errors"
	"github.com/open-builders/todo-backend/internal/common/httputil"
	"github.com/open-builders/todo-backend/internal/common/middleware"
	"github.com/open-builders/todo-backend/internal/features/auth/initdata"
	"github.com/open-builders/todo-backend/internal/features/auth/service"
	userservice "github.com/open-builders/todo-backend/internal/features/user/service"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes mounts the login endpoints on public and /auth/me on
// protected, which must already require a session.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	auth := public.Group("/auth")
	{
		auth.POST("/telegram", h.telegram)
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
	}
	protected.GET("/auth/me", h.me)
}

type telegramRequest struct {
	InitData string `json:"initData" example:"query_id=...&user=...&auth_date=...&hash=..."`
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"correct horse"`
}

func mapError(err error) *errors.AppError {
	switch {
	case stderrors.Is(err, initdata.ErrInvalidSignature),
		stderrors.Is(err, initdata.ErrExpired),
		stderrors.Is(err, initdata.ErrMissingUserData),
		stderrors.Is(err, initdata.ErrAuthDateMissing),
		stderrors.Is(err, initdata.ErrMalformed):
		return middleware.InitDataError(err)
	case stderrors.Is(err, service.ErrInvalidCredentials):
		return errors.Wrap(err, errors.ErrCodeInvalidCredentials, "Invalid email or password")
	case stderrors.Is(err, userservice.ErrEmailTaken):
		return errors.Wrap(err, errors.ErrCodeEmailTaken, "Email is already registered")
	case stderrors.Is(err, userservice.ErrUserNotFound):
		return errors.Wrap(err, errors.ErrCodeUserNotFound, "User not found")
	}
	return nil
}

// @Summary Log in with Telegram init-data
// @Description Verifies init-data from the body or the X-Telegram-Init-Data header,
// @Description creates or refreshes the user and returns a session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body telegramRequest false "Init data"
// @Success 200 {object} service.Result
// @Failure 401 {object} middleware.ErrorResponse "INVALID_INIT_DATA, INIT_DATA_EXPIRED or MISSING_USER_DATA"
// @Router /auth/telegram [post]
func (h *AuthHandler) telegram(c *gin.Context) {
	var req telegramRequest
	if c.Request.ContentLength != 0 {
		if err := httputil.BindJSON(c, &req); err != nil {
			httputil.Abort(c, err, nil)
			return
		}
	}
	raw := req.InitData
	if raw == "" {
		raw = middleware.ExtractInitData(c)
	}
	if raw == "" {
		httputil.Abort(c, errors.NewUnauthorizedError("Telegram init data required"), nil)
		return
	}

	result, err := h.service.LoginWithTelegram(c.Request.Context(), raw)
	if err != nil {
		httputil.Abort(c, err, mapError)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Register with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param input body credentialsRequest true "Credentials"
// @Success 201 {object} service.Result
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "EMAIL_TAKEN"
// @Router /auth/register [post]
func (h *AuthHandler) register(c *gin.Context) {
	var req credentialsRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.Abort(c, err, nil)
		return
	}
	result, err := h.service.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httputil.Abort(c, err, mapError)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param input body credentialsRequest true "Credentials"
// @Success 200 {object} service.Result
// @Failure 401 {object} middleware.ErrorResponse "INVALID_CREDENTIALS"
// @Router /auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req credentialsRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.Abort(c, err, nil)
		return
	}
	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httputil.Abort(c, err, mapError)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Current session user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Security TelegramInitData
// @Success 200 {object} models.User
// @Failure 401 {object} middleware.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) me(c *gin.Context) {
	userID, err := httputil.UserID(c)
	if err != nil {
		httputil.Abort(c, err, nil)
		return
	}
	user, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		httputil.Abort(c, err, mapError)
		return
	}
	c.JSON(http.StatusOK, user)
}
