package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/open-builders/todo-backend/internal/common/logger"
)

var ErrNotConfigured = errors.New("telegram bot is not configured")

const launchText = "Open your to-do list"

// Sender is the subset of tgbotapi.BotAPI used here.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api        Sender
	miniAppURL string
}

// NewBot connects to the Bot API. An empty token yields a disabled bot whose
// calls return ErrNotConfigured.
func NewBot(token, miniAppURL string) (*Bot, error) {
	if token == "" || miniAppURL == "" {
		return &Bot{}, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram bot api: %w", err)
	}
	logger.Info().Str("bot", api.Self.UserName).Msg("Telegram bot authorized")
	return &Bot{api: api, miniAppURL: miniAppURL}, nil
}

func NewBotWithSender(api Sender, miniAppURL string) *Bot {
	return &Bot{api: api, miniAppURL: miniAppURL}
}

func (b *Bot) Enabled() bool {
	return b != nil && b.api != nil && b.miniAppURL != ""
}

// SendMiniAppButton sends chatID a message with a button launching the Mini App.
func (b *Bot) SendMiniAppButton(ctx context.Context, chatID int64) error {
	return b.send(ctx, chatID, launchText, "Open app")
}

// Notify sends text to chatID with a button opening the Mini App.
func (b *Bot) Notify(ctx context.Context, chatID int64, text string) error {
	return b.send(ctx, chatID, text, "Open project")
}

func (b *Bot) send(ctx context.Context, chatID int64, text, button string) error {
	if !b.Enabled() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(button, b.miniAppURL),
		),
	)

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message to %d: %w", chatID, err)
	}
	return nil
}
