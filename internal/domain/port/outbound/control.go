package outbound

import "context"

// ControlSender sends text to a chat on the control bot endpoint.
type ControlSender interface {
	SendMessage(ctx context.Context, chatID, text string) error
}
