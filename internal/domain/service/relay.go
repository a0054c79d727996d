package service

import (
	"context"
	"log/slog"

	"github.com/uxwatch/uxwatch/internal/domain/model"
	"github.com/uxwatch/uxwatch/internal/domain/port/inbound"
	"github.com/uxwatch/uxwatch/internal/domain/port/outbound"
)

const rejectionNotice = "Unauthorized access."

// ControlRelay is the inbound side of the control bot: it validates the
// origin of each control message and fills the response slot on match. Both
// the long-polling listener and the webhook variant route through it.
type ControlRelay struct {
	slot             *ResponseSlot
	control          outbound.ControlSender
	authorizedChatID string
	logger           *slog.Logger
}

var _ inbound.ControlInputPort = (*ControlRelay)(nil)

// NewControlRelay creates a ControlRelay. control may be nil, in which case
// no rejection notice is sent to unexpected senders.
func NewControlRelay(slot *ResponseSlot, control outbound.ControlSender, authorizedChatID string, logger *slog.Logger) *ControlRelay {
	return &ControlRelay{
		slot:             slot,
		control:          control,
		authorizedChatID: authorizedChatID,
		logger:           logger,
	}
}

// HandleControlMessage fills the slot with the message text when the origin
// chat matches the configured authorized chat id. This is a capability
// check, not authentication: a mismatched origin is rejected with a notice
// and the slot is left untouched.
func (r *ControlRelay) HandleControlMessage(ctx context.Context, msg model.ControlMessage) error {
	if msg.OriginChatID != r.authorizedChatID {
		r.logger.Warn("control message from unexpected chat", "chat_id", msg.OriginChatID)
		if r.control != nil {
			if err := r.control.SendMessage(ctx, msg.OriginChatID, rejectionNotice); err != nil {
				r.logger.Error("sending rejection notice", "chat_id", msg.OriginChatID, "error", err)
			}
		}
		return nil
	}

	if !r.slot.Fill(msg.Text) {
		r.logger.Warn("discarding control input with no outstanding request", "chat_id", msg.OriginChatID)
		return nil
	}
	r.logger.Info("control input accepted", "chat_id", msg.OriginChatID)
	return nil
}
