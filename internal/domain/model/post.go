package model

// IncomingPost is one new-message event from a monitored channel.
type IncomingPost struct {
	Text      string `json:"text"`
	ChannelID int64  `json:"channel_id"`
}

// OutboundReply is the drafted response to a matched post, consumed by the
// delivery step of the pipeline.
type OutboundReply struct {
	TargetHandle   string `json:"target_handle"`
	DraftedText    string `json:"drafted_text"`
	AttachmentPath string `json:"attachment_path,omitempty"`
}
