package model

// ChannelPeer is a monitored channel resolved to a stable protocol handle.
// Created from configuration, resolved once at startup, read-only afterward
// except for the join bookkeeping.
type ChannelPeer struct {
	Identifier string `json:"identifier"`
	ChannelID  int64  `json:"channel_id"`
	AccessHash int64  `json:"access_hash"`
	Joined     bool   `json:"joined"`
}

// WithJoined returns a copy of the peer marked as joined.
func (c ChannelPeer) WithJoined() ChannelPeer {
	c.Joined = true
	return c
}
