package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInputTimeout means the operator did not answer a prompt within the
	// configured window.
	ErrInputTimeout = errors.New("timed out waiting for operator input")

	// ErrRequestInFlight means a second input request was issued before the
	// first was satisfied.
	ErrRequestInFlight = errors.New("input request already in flight")

	// ErrRequestSuperseded means the awaited request cycle was replaced by a
	// newer one before it completed.
	ErrRequestSuperseded = errors.New("input request superseded")

	// ErrAuthInProgress means a second authentication attempt was started
	// while one was active.
	ErrAuthInProgress = errors.New("authentication already in progress")

	// ErrTwoFactorUnsupported means the account requires a two-factor
	// password, which the credential relay does not support.
	ErrTwoFactorUnsupported = errors.New("two-factor password required but unsupported")
)

// DeliveryError wraps a failed send of a prompt on the control channel.
type DeliveryError struct {
	ChatID string
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivering prompt to chat %s: %v", e.ChatID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
