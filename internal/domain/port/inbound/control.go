package inbound

import (
	"context"

	"github.com/uxwatch/uxwatch/internal/domain/model"
)

// ControlInputPort receives inbound text events from a control surface
// (long-polling bot or webhook) and routes them to the credential relay.
type ControlInputPort interface {
	HandleControlMessage(ctx context.Context, msg model.ControlMessage) error
}
