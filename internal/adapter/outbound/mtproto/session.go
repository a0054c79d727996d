package mtproto

import (
	"context"
	"errors"

	"github.com/gotd/td/session"

	"github.com/uxwatch/uxwatch/internal/domain/port/outbound"
)

// sessionStorage bridges the domain session store to the protocol client's
// storage interface.
type sessionStorage struct {
	store outbound.SessionStore
}

var _ session.Storage = sessionStorage{}

func (s sessionStorage) LoadSession(ctx context.Context) ([]byte, error) {
	data, err := s.store.Load(ctx)
	if errors.Is(err, outbound.ErrSessionNotFound) {
		return nil, session.ErrNotFound
	}
	return data, err
}

func (s sessionStorage) StoreSession(ctx context.Context, data []byte) error {
	return s.store.Store(ctx, data)
}
