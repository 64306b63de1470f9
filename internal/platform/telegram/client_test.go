package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestSendMiniAppButton(t *testing.T) {
	sender := &fakeSender{}
	bot := NewBotWithSender(sender, "https://t.me/todo_bot/app")

	require.NoError(t, bot.SendMiniAppButton(context.Background(), 1001))
	require.Len(t, sender.sent, 1)

	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(1001), msg.ChatID)

	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 1)
	require.NotNil(t, markup.InlineKeyboard[0][0].URL)
	assert.Equal(t, "https://t.me/todo_bot/app", *markup.InlineKeyboard[0][0].URL)
}

func TestSendMiniAppButton_NotConfigured(t *testing.T) {
	bot, err := NewBot("", "")
	require.NoError(t, err)

	assert.False(t, bot.Enabled())
	assert.ErrorIs(t, bot.SendMiniAppButton(context.Background(), 1), ErrNotConfigured)
}

func TestSendMiniAppButton_SendError(t *testing.T) {
	bot := NewBotWithSender(&fakeSender{err: errors.New("chat not found")}, "https://t.me/todo_bot/app")

	err := bot.SendMiniAppButton(context.Background(), 1)
	assert.ErrorContains(t, err, "chat not found")
}

func TestNotify(t *testing.T) {
	sender := &fakeSender{}
	bot := NewBotWithSender(sender, "https://t.me/todo_bot/app")

	require.NoError(t, bot.Notify(context.Background(), 42, "bob joined Groceries"))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "bob joined Groceries", msg.Text)
}

func TestNotify_CancelledContext(t *testing.T) {
	sender := &fakeSender{}
	bot := NewBotWithSender(sender, "https://t.me/todo_bot/app")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, bot.Notify(ctx, 42, "hi"), context.Canceled)
	assert.Empty(t, sender.sent)
}
