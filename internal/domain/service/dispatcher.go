package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uxwatch/uxwatch/internal/domain/model"
	"github.com/uxwatch/uxwatch/internal/domain/port/inbound"
	"github.com/uxwatch/uxwatch/internal/domain/port/outbound"
)

// Dispatcher joins the configured channels, resolves them once to stable
// peers, and subscribes a single new-message handler across the whole
// monitored set. On a provider rate-limit signal it suspends handling for
// the advertised duration; the triggering message is dropped, not replayed.
type Dispatcher struct {
	messenger outbound.Messenger
	pipeline  inbound.PostReceiverPort
	channels  []string
	logger    *slog.Logger

	// sleep is replaceable in tests.
	sleep func(time.Duration)

	monitored map[int64]model.ChannelPeer
}

// NewDispatcher creates a Dispatcher for the given channel identifiers.
func NewDispatcher(messenger outbound.Messenger, pipeline inbound.PostReceiverPort, channels []string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		messenger: messenger,
		pipeline:  pipeline,
		channels:  channels,
		logger:    logger,
		sleep:     time.Sleep,
		monitored: make(map[int64]model.ChannelPeer),
	}
}

// Start joins and resolves every configured channel, then registers the
// event handlers. It returns an error only when no channel at all could be
// monitored.
func (d *Dispatcher) Start(ctx context.Context) error {
	for _, identifier := range d.channels {
		peer, err := d.setupChannel(ctx, identifier)
		if err != nil {
			d.logger.Error("failed to set up channel", "channel", identifier, "error", err)
			continue
		}
		d.monitored[peer.ChannelID] = peer
		d.logger.Info("monitoring channel", "channel", identifier, "channel_id", peer.ChannelID)
	}

	if len(d.monitored) == 0 {
		return fmt.Errorf("no channels could be joined or resolved")
	}

	// One registry, one subscription across the whole monitored set.
	registry := outbound.HandlerRegistry{
		outbound.EventNewMessage: d.handleNewMessage,
	}
	d.messenger.Subscribe(registry)

	d.logger.Info("dispatcher running", "channels", len(d.monitored))
	return nil
}

// SetSleepFunc replaces the pause function used on rate-limit signals.
// Intended for tests.
func (d *Dispatcher) SetSleepFunc(f func(time.Duration)) {
	d.sleep = f
}

// Monitored reports whether a channel id is in the monitored set.
func (d *Dispatcher) Monitored(channelID int64) bool {
	_, ok := d.monitored[channelID]
	return ok
}

func (d *Dispatcher) setupChannel(ctx context.Context, identifier string) (model.ChannelPeer, error) {
	peer, err := d.messenger.ResolveChannel(ctx, identifier)
	if err != nil {
		return model.ChannelPeer{}, fmt.Errorf("resolving channel: %w", err)
	}
	// Joining is idempotent, "already a member" is not an error.
	if err := d.messenger.JoinChannel(ctx, peer); err != nil {
		d.logger.Warn("could not join channel", "channel", identifier, "error", err)
	} else {
		peer = peer.WithJoined()
	}
	return peer, nil
}

// handleNewMessage forwards one post to the pipeline. Errors are contained
// per post: a bad post never stops the dispatcher. A rate-limit signal
// pauses handling for the advertised duration.
func (d *Dispatcher) handleNewMessage(ctx context.Context, post model.IncomingPost) error {
	if !d.Monitored(post.ChannelID) {
		return nil
	}

	err := d.pipeline.HandlePost(ctx, post)
	if err == nil {
		return nil
	}

	var rateLimit *outbound.RateLimitError
	if errors.As(err, &rateLimit) {
		d.logger.Warn("rate limited, pausing message handling", "retry_after", rateLimit.RetryAfter)
		d.sleep(rateLimit.RetryAfter)
		return nil
	}

	d.logger.Error("error processing message", "channel_id", post.ChannelID, "error", err)
	return nil
}
