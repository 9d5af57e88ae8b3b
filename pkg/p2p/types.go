package p2p

import "polyglot/pkg/room"

// CommandKind identifies one command sent to the session goroutine.
type CommandKind int

const (
	CommandSubscribe CommandKind = iota
	CommandSendMessage
	CommandUnsubscribe
)

// Command is the only data flowing from the orchestrator into the session.
type Command struct {
	Kind    CommandKind
	Topic   room.Topic
	Message WireMessage
}

// EventKind identifies one event the session reports back.
type EventKind int

const (
	EventMessageReceived EventKind = iota
	EventSubscribed
	EventError
)

// ErrKind categorizes session failures by how the orchestrator should react.
type ErrKind int

const (
	ErrNone ErrKind = iota
	ErrNetworkCreationFailed
	ErrSubscriptionFailed
	ErrSubscriptionLost
	ErrChannelClosed
	ErrSendFailed
	ErrSerializationFailed
)

func (k ErrKind) String() string {
	switch k {
	case ErrNetworkCreationFailed:
		return "network_creation_failed"
	case ErrSubscriptionFailed:
		return "subscription_failed"
	case ErrSubscriptionLost:
		return "subscription_lost"
	case ErrChannelClosed:
		return "channel_closed"
	case ErrSendFailed:
		return "send_failed"
	case ErrSerializationFailed:
		return "serialization_failed"
	default:
		return "none"
	}
}

// Event is the only data flowing from the session back to the orchestrator.
type Event struct {
	Kind    EventKind
	Message WireMessage
	Topic   room.Topic
	Err     ErrKind
	Detail  string
}
