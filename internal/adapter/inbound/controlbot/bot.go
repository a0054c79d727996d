// Package controlbot runs the operator-facing bot over long polling and feeds
// incoming text into the control relay.
package controlbot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/mymmrac/telego"

	"github.com/uxwatch/uxwatch/internal/domain/model"
	"github.com/uxwatch/uxwatch/internal/domain/port/inbound"
)

// Config holds control bot poller configuration.
type Config struct {
	Token          string
	PollingTimeout time.Duration
}

// Poller receives updates from the bot API via long polling and routes text
// messages to the control input port. It is the long-polling counterpart of
// the webhook handler; both feed the same relay.
type Poller struct {
	bot    *telego.Bot
	relay  inbound.ControlInputPort
	cfg    Config
	logger *slog.Logger
}

// NewPoller creates a Poller for the given bot token.
func NewPoller(cfg Config, relay inbound.ControlInputPort, logger *slog.Logger) (*Poller, error) {
	bot, err := telego.NewBot(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating control bot: %w", err)
	}
	return &Poller{
		bot:    bot,
		relay:  relay,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Run starts long polling and blocks until ctx is cancelled. Relay errors are
// logged and never stop the loop; the operator can always send another
// message.
func (p *Poller) Run(ctx context.Context) error {
	me, err := p.bot.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("control bot identity check: %w", err)
	}
	p.logger.Info("control bot polling started", "username", me.Username)

	timeout := int(p.cfg.PollingTimeout / time.Second)
	if timeout <= 0 {
		timeout = 30
	}

	updates, err := p.bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: timeout,
	})
	if err != nil {
		return fmt.Errorf("starting long polling: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return ctx.Err()
			}
			p.handleUpdate(ctx, update)
		}
	}
}

func (p *Poller) handleUpdate(ctx context.Context, update telego.Update) {
	msg := update.Message
	if msg == nil {
		msg = update.EditedMessage
	}
	if msg == nil || msg.Text == "" {
		return
	}

	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	cm := model.NewControlMessage(chatID, msg.Text)
	if err := p.relay.HandleControlMessage(ctx, cm); err != nil {
		p.logger.Warn("control message not handled", "chat_id", chatID, "error", err)
	}
}
