package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/uxwatch/uxwatch/internal/domain/port/outbound"
)

// InputBroker implements the one-shot request/response protocol over the
// control channel: send a prompt, block until the slot is filled. Only one
// request may be outstanding at a time.
type InputBroker struct {
	slot     *ResponseSlot
	control  outbound.ControlSender
	chatID   string
	timeout  time.Duration
	logger   *slog.Logger
	inFlight atomic.Bool
}

// NewInputBroker creates an InputBroker bound to the given slot and control
// chat. A zero timeout disables the wait deadline.
func NewInputBroker(slot *ResponseSlot, control outbound.ControlSender, chatID string, timeout time.Duration, logger *slog.Logger) *InputBroker {
	return &InputBroker{
		slot:    slot,
		control: control,
		chatID:  chatID,
		timeout: timeout,
		logger:  logger,
	}
}

// RequestInput sends prompt to the control chat and blocks until the
// operator's answer arrives, the timeout elapses, or ctx is cancelled. The
// answer is returned verbatim; content validation is the caller's concern.
func (b *InputBroker) RequestInput(ctx context.Context, prompt string) (string, error) {
	if !b.inFlight.CompareAndSwap(false, true) {
		return "", ErrRequestInFlight
	}
	defer b.inFlight.Store(false)

	token := b.slot.Arm()
	defer b.slot.Disarm()

	if err := b.control.SendMessage(ctx, b.chatID, prompt); err != nil {
		return "", &DeliveryError{ChatID: b.chatID, Err: err}
	}

	b.logger.Info("waiting for operator input", "prompt", prompt, "token", token)
	value, err := b.slot.Wait(ctx, token, b.timeout)
	if err != nil {
		return "", err
	}
	return value, nil
}
