package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/uxwatch/uxwatch/internal/domain/model"
	"github.com/uxwatch/uxwatch/internal/domain/port/outbound"
)

// Prompts relayed to the operator, kept verbatim from the deployed bot.
const (
	promptPhone = "لطفاً شماره تلفن خود را برای ورود به تلگرام وارد کنید:"
	promptCode  = "لطفاً کد تاییدی که از تلگرام دریافت کرده‌اید را وارد کنید:"
)

// AuthState is one state of the login state machine.
type AuthState int

const (
	StateUninitialized AuthState = iota
	StateConnecting
	StateAwaitingPhone
	StateAwaitingCode
	StateAuthorized
	StateFailed
)

func (s AuthState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConnecting:
		return "connecting"
	case StateAwaitingPhone:
		return "awaiting_phone"
	case StateAwaitingCode:
		return "awaiting_code"
	case StateAuthorized:
		return "authorized"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// AuthEvent is an observation fed into the transition function.
type AuthEvent int

const (
	EvStart AuthEvent = iota
	EvSessionAuthorized
	EvSessionUnauthorized
	EvPhoneObtained
	EvCodeSent
	EvCodeObtained
	EvSignInOK
	EvTwoFactorRequired
	EvCodeInvalid
	EvError
)

// AuthEffect is the side effect the driver must perform after a transition.
type AuthEffect int

const (
	FxNone AuthEffect = iota
	FxCheckSession
	FxPromptPhone
	FxSendCode
	FxPromptCode
	FxSignIn
)

// Transition is the pure login transition function: (state, event) ->
// (state, effect). Every non-terminal state moves to StateFailed on
// EvTwoFactorRequired, EvCodeInvalid, or EvError. Unexpected events also
// fail rather than being silently ignored.
func Transition(state AuthState, ev AuthEvent) (AuthState, AuthEffect) {
	switch ev {
	case EvTwoFactorRequired, EvCodeInvalid, EvError:
		return StateFailed, FxNone
	}

	switch state {
	case StateUninitialized:
		if ev == EvStart {
			return StateConnecting, FxCheckSession
		}
	case StateConnecting:
		switch ev {
		case EvSessionAuthorized:
			return StateAuthorized, FxNone
		case EvSessionUnauthorized:
			return StateAwaitingPhone, FxPromptPhone
		}
	case StateAwaitingPhone:
		switch ev {
		case EvPhoneObtained:
			return StateAwaitingPhone, FxSendCode
		case EvCodeSent:
			return StateAwaitingCode, FxPromptCode
		}
	case StateAwaitingCode:
		switch ev {
		case EvCodeObtained:
			return StateAwaitingCode, FxSignIn
		case EvSignInOK:
			return StateAuthorized, FxNone
		}
	}
	return StateFailed, FxNone
}

// Authenticator drives the primary client's login state machine, invoking
// the input broker whenever the protocol demands a phone number or a
// one-time code. A two-factor password requirement is a hard failure.
type Authenticator struct {
	messenger outbound.Messenger
	broker    *InputBroker
	logger    *slog.Logger
	inFlight  atomic.Bool
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(messenger outbound.Messenger, broker *InputBroker, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		messenger: messenger,
		broker:    broker,
		logger:    logger,
	}
}

// Authenticate runs the login state machine to completion. It returns nil
// once the session is authorized and an error when the attempt fails; the
// caller must not proceed to channel monitoring on failure. A second call
// while one attempt is active returns ErrAuthInProgress.
func (a *Authenticator) Authenticate(ctx context.Context) error {
	if !a.inFlight.CompareAndSwap(false, true) {
		return ErrAuthInProgress
	}
	defer a.inFlight.Store(false)

	var sess model.AuthSession
	defer sess.Reset()

	state := StateUninitialized
	ev := EvStart
	var lastErr error

	for {
		var fx AuthEffect
		prev := state
		state, fx = Transition(state, ev)
		a.logger.Debug("auth transition", "from", prev.String(), "to", state.String())

		switch state {
		case StateAuthorized:
			sess.Authorized = true
			a.logger.Info("authentication complete")
			return nil
		case StateFailed:
			if lastErr == nil {
				lastErr = fmt.Errorf("unexpected auth event %d in state %s", ev, prev)
			}
			a.logger.Error("authentication failed", "state", prev.String(), "error", lastErr)
			return lastErr
		}

		ev, lastErr = a.apply(ctx, fx, &sess)
	}
}

// apply performs one effect against the messenger or the broker and reports
// the resulting event.
func (a *Authenticator) apply(ctx context.Context, fx AuthEffect, sess *model.AuthSession) (AuthEvent, error) {
	switch fx {
	case FxCheckSession:
		authorized, err := a.messenger.IsAuthorized(ctx)
		if err != nil {
			return EvError, fmt.Errorf("checking session authorization: %w", err)
		}
		if authorized {
			return EvSessionAuthorized, nil
		}
		return EvSessionUnauthorized, nil

	case FxPromptPhone:
		phone, err := a.broker.RequestInput(ctx, promptPhone)
		if err != nil {
			return EvError, fmt.Errorf("requesting phone number: %w", err)
		}
		phone = strings.TrimSpace(phone)
		if phone == "" {
			return EvError, fmt.Errorf("empty phone number from operator")
		}
		sess.Phone = phone
		return EvPhoneObtained, nil

	case FxSendCode:
		hash, err := a.messenger.RequestCode(ctx, sess.Phone)
		if err != nil {
			return EvError, fmt.Errorf("requesting verification code: %w", err)
		}
		sess.CodeHash = hash
		return EvCodeSent, nil

	case FxPromptCode:
		code, err := a.broker.RequestInput(ctx, promptCode)
		if err != nil {
			return EvError, fmt.Errorf("requesting verification code input: %w", err)
		}
		code = strings.TrimSpace(code)
		if code == "" {
			return EvError, fmt.Errorf("empty verification code from operator")
		}
		sess.Code = code
		return EvCodeObtained, nil

	case FxSignIn:
		err := a.messenger.SignIn(ctx, sess.Phone, sess.Code, sess.CodeHash)
		switch {
		case err == nil:
			return EvSignInOK, nil
		case errors.Is(err, outbound.ErrTwoFactorRequired):
			return EvTwoFactorRequired, ErrTwoFactorUnsupported
		case errors.Is(err, outbound.ErrCodeInvalid):
			return EvCodeInvalid, fmt.Errorf("sign-in rejected: %w", err)
		default:
			return EvError, fmt.Errorf("signing in: %w", err)
		}
	}
	return EvError, fmt.Errorf("unknown auth effect %d", fx)
}
