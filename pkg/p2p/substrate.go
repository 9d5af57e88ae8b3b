package p2p

import (
	"context"

	"polyglot/pkg/room"
)

// Delivery is one inbound payload from the substrate. Backfill deliveries
// carry replayed history and may include protocol bookkeeping that is not a
// chat message, so the session treats them leniently.
type Delivery struct {
	Payload  []byte
	From     string
	Backfill bool
}

// Subscription is the live binding to one topic: an outbound byte sink plus
// an inbound delivery stream. The stream channel closing means the substrate
// ended the subscription.
type Subscription interface {
	Send(payload []byte) error
	Deliveries() <-chan Delivery
	Close()
}

// Handle is one joined connection to the substrate.
type Handle interface {
	Subscribe(topic room.Topic) (Subscription, error)
}

// Substrate is the external peer-to-peer transport. The session treats it
// purely as byte pipes addressed by topic.
type Substrate interface {
	Join(ctx context.Context) (Handle, error)
}
