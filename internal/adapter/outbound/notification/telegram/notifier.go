// Package telegram implements the control sender over the bot API.
package telegram

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mymmrac/telego"

	"github.com/uxwatch/uxwatch/internal/domain/port/outbound"
)

// Notifier implements outbound.ControlSender via the bot API. It shares the
// token with the control bot poller; both sides of the operator conversation
// go through the same bot identity.
type Notifier struct {
	bot *telego.Bot
}

var _ outbound.ControlSender = (*Notifier)(nil)

// NewNotifier creates a Notifier for the given bot token.
func NewNotifier(token string) (*Notifier, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("creating control sender: %w", err)
	}
	return &Notifier{bot: bot}, nil
}

// SendMessage sends text to the chat identified by chatID (a decimal chat id).
func (n *Notifier) SendMessage(ctx context.Context, chatID, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}

	_, err = n.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: id},
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("sending control message: %w", err)
	}
	return nil
}

// Ping verifies the bot token by calling getMe. Used by the health checker.
func (n *Notifier) Ping(ctx context.Context) error {
	if _, err := n.bot.GetMe(ctx); err != nil {
		return fmt.Errorf("control bot ping: %w", err)
	}
	return nil
}
