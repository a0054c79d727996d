package inbound

import (
	"context"

	"github.com/uxwatch/uxwatch/internal/domain/model"
)

// PostReceiverPort delivers channel posts to the message pipeline.
type PostReceiverPort interface {
	HandlePost(ctx context.Context, post model.IncomingPost) error
}
