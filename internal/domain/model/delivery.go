package model

import "time"

type DeliveryOutcome string

const (
	// DeliveryFull means both the reply text and the attachment were sent.
	DeliveryFull DeliveryOutcome = "full"
	// DeliveryTextFallback means the attachment could not be sent and a
	// text-only message carrying the portfolio link was sent instead.
	DeliveryTextFallback DeliveryOutcome = "text_fallback"
	// DeliveryFailed means even the reply text could not be delivered.
	DeliveryFailed DeliveryOutcome = "failed"
)

// Delivery records one outbound reply attempt to a matched post.
type Delivery struct {
	ID             string          `json:"id"`
	TargetHandle   string          `json:"target_handle"`
	ChannelID      int64           `json:"channel_id"`
	Text           string          `json:"text"`
	AttachmentSent bool            `json:"attachment_sent"`
	Outcome        DeliveryOutcome `json:"outcome"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewDelivery creates a Delivery with a generated ID and timestamp.
func NewDelivery(targetHandle string, channelID int64, text string) Delivery {
	return Delivery{
		ID:           generateID(),
		TargetHandle: targetHandle,
		ChannelID:    channelID,
		Text:         text,
		Outcome:      DeliveryFailed,
		CreatedAt:    time.Now().UTC(),
	}
}

// WithOutcome returns a copy of the delivery with its final outcome set.
func (d Delivery) WithOutcome(outcome DeliveryOutcome, attachmentSent bool) Delivery {
	d.Outcome = outcome
	d.AttachmentSent = attachmentSent
	return d
}
