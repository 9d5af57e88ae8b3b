// Package relay implements the websocket relay the peer-to-peer substrate
// runs over: peers join topic-addressed rooms and the relay fans published
// payloads out to the other members, replaying recent history to newcomers.
package relay

// Frame types exchanged between peers and the relay.
const (
	// Client to relay.
	FrameJoin    = "join"
	FrameLeave   = "leave"
	FramePublish = "publish"

	// Relay to client. Backfill frames replay room history to a peer that
	// just joined and may carry bookkeeping payloads besides chat messages.
	FrameMessage  = "message"
	FrameBackfill = "backfill"
)

// Frame is one websocket message on the relay protocol. Payload bytes are
// opaque to the relay.
type Frame struct {
	Type    string `json:"type"`
	Topic   string `json:"topic,omitempty"`
	Payload []byte `json:"payload,omitempty"`
	From    string `json:"from,omitempty"`
}
