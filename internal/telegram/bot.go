// Package telegram provides a send-only Telegram bot for budget alerts.
package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot wraps the Telegram bot API.
type Bot struct {
	api         *tgbotapi.BotAPI
	adminChatID int64
}

// New creates a Bot. Returns nil if token is empty (Telegram disabled).
func New(token string, adminChatID int64) (*Bot, error) {
	if token == "" {
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram.New: %w", err)
	}
	return &Bot{api: api, adminChatID: adminChatID}, nil
}

// Send sends a plain text message to the admin chat.
func (b *Bot) Send(msg string) error {
	if b == nil {
		return nil
	}
	m := tgbotapi.NewMessage(b.adminChatID, msg)
	m.ParseMode = "Markdown"
	_, err := b.api.Send(m)
	if err != nil {
		return fmt.Errorf("telegram.Send: %w", err)
	}
	return nil
}
