package http

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-builders/todo-backend/internal/common/errors"
	"github.com/open-builders/todo-backend/internal/common/httputil"
	"github.com/open-builders/todo-backend/internal/platform/telegram"
)

type telegramHandler struct {
	bot *telegram.Bot
}

func newTelegramHandler(bot *telegram.Bot) *telegramHandler {
	return &telegramHandler{bot: bot}
}

func (h *telegramHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/telegram/send-button", h.sendButton)
}

type sendButtonRequest struct {
	ChatID int64 `json:"chatId" binding:"required" example:"987654321"`
}

// @Summary Send the Mini App launch button
// @Tags telegram
// @Accept json
// @Produce json
// @Security BearerAuth
// @Security TelegramInitData
// @Param input body sendButtonRequest true "Target chat"
// @Success 200 {object} map[string]bool
// @Failure 503 {object} middleware.ErrorResponse "Bot not configured"
// @Router /telegram/send-button [post]
func (h *telegramHandler) sendButton(c *gin.Context) {
	var req sendButtonRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.Abort(c, err, nil)
		return
	}

	if err := h.bot.SendMiniAppButton(c.Request.Context(), req.ChatID); err != nil {
		httputil.Abort(c, err, func(err error) *errors.AppError {
			if stderrors.Is(err, telegram.ErrNotConfigured) {
				return errors.Wrap(err, errors.ErrCodeUnavailable, "Telegram bot is not configured")
			}
			return errors.NewTelegramAPIError("send message", err)
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
