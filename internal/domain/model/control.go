package model

import "time"

// ControlMessage is a single inbound text message on the control chat.
// It is ephemeral: produced by a control surface adapter and consumed
// exactly once by the relay.
type ControlMessage struct {
	OriginChatID string    `json:"origin_chat_id"`
	Text         string    `json:"text"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewControlMessage creates a ControlMessage stamped with the current time.
func NewControlMessage(originChatID, text string) ControlMessage {
	return ControlMessage{
		OriginChatID: originChatID,
		Text:         text,
		Timestamp:    time.Now().UTC(),
	}
}
