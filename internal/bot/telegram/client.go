// Package telegram adapts the Telegram Bot API to the router: long polling
// in, plain text messages out.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"labalog.org/internal/bot"
	"labalog.org/internal/obs"
)

// Handler consumes parsed incoming messages.
type Handler interface {
	Handle(ctx context.Context, msg bot.Message) error
}

type Client struct {
	api *tgbotapi.BotAPI
}

func New(token string) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Client{api: api}, nil
}

// Username returns the bot's own username as reported by Telegram.
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// SendText delivers one plain text message to a chat.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("telegram send to %d: %w", chatID, err)
	}
	return nil
}

// Poll long-polls for updates and feeds text messages to the handler one at
// a time. Commands run sequentially on purpose: the backing table has no
// cross-command locking, so a single command thread is the concurrency
// model. Returns when ctx is cancelled.
func (c *Client) Poll(ctx context.Context, h Handler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := c.api.GetUpdatesChan(u)
	defer c.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			msg := bot.Message{
				ChatID:   update.Message.Chat.ID,
				UserID:   update.Message.From.ID,
				UserName: senderName(update.Message.From),
				Text:     update.Message.Text,
			}
			if err := h.Handle(ctx, msg); err != nil {
				obs.Logger().Printf("telegram: reply to chat %d failed: %v", msg.ChatID, err)
			}
		}
	}
}

func senderName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.UserName
}
