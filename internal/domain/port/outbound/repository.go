package outbound

import (
	"context"
	"errors"

	"github.com/uxwatch/uxwatch/internal/domain/model"
)

// ErrSessionNotFound is returned by SessionStore.Load when no session blob
// has been persisted yet.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists the opaque protocol session blob so a restart can
// resume an authorized session instead of re-running the credential relay.
type SessionStore interface {
	Load(ctx context.Context) ([]byte, error)
	Store(ctx context.Context, data []byte) error
}

// DeliveryRepository records outbound reply attempts.
type DeliveryRepository interface {
	Create(ctx context.Context, d model.Delivery) (model.Delivery, error)
	ListRecent(ctx context.Context, limit int) ([]model.Delivery, error)
}
