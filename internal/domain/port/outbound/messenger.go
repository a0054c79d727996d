package outbound

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uxwatch/uxwatch/internal/domain/model"
)

// Signals surfaced by the messaging protocol endpoint during sign-in.
var (
	// ErrTwoFactorRequired is returned by SignIn when the account has a
	// two-factor password enabled.
	ErrTwoFactorRequired = errors.New("two-factor password required")
	// ErrCodeInvalid is returned by SignIn when the one-time code was
	// rejected by the protocol endpoint.
	ErrCodeInvalid = errors.New("verification code invalid")
)

// RateLimitError is the provider's "retry after N" throttling signal.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// EventKind identifies a protocol event a handler can be registered for.
type EventKind string

const EventNewMessage EventKind = "new_message"

// EventHandler processes one channel post.
type EventHandler func(ctx context.Context, post model.IncomingPost) error

// HandlerRegistry maps event kind to handler. It is constructed once at
// startup and handed to the messenger before the session runs.
type HandlerRegistry map[EventKind]EventHandler

// Messenger abstracts the primary messaging-protocol client: session
// lifecycle, the login operations driven by the authenticator, channel
// membership, and outbound sends.
type Messenger interface {
	// Run opens the session (resuming a persisted one when available) and
	// invokes f once the connection is up. It blocks until f returns or
	// ctx is cancelled.
	Run(ctx context.Context, f func(ctx context.Context) error) error

	// IsAuthorized reports whether the resumed or fresh session is signed in.
	IsAuthorized(ctx context.Context) (bool, error)

	// RequestCode asks the protocol endpoint to send a one-time code to the
	// phone and returns the code hash needed for SignIn.
	RequestCode(ctx context.Context, phone string) (codeHash string, err error)

	// SignIn completes the login with phone, code and the hash from
	// RequestCode. Returns ErrTwoFactorRequired or ErrCodeInvalid on the
	// corresponding protocol signals.
	SignIn(ctx context.Context, phone, code, codeHash string) error

	// ResolveChannel resolves a channel identifier to a stable peer.
	ResolveChannel(ctx context.Context, identifier string) (model.ChannelPeer, error)

	// JoinChannel joins the channel. Being already a member is not an error.
	JoinChannel(ctx context.Context, peer model.ChannelPeer) error

	// Subscribe registers the event handlers for the running session.
	Subscribe(registry HandlerRegistry)

	// SendText sends a plain text message to the @handle-addressed peer.
	SendText(ctx context.Context, handle, text string) error

	// SendFile uploads and sends a local file with a caption.
	SendFile(ctx context.Context, handle, path, caption string) error
}
