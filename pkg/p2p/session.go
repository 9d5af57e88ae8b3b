// Package p2p bridges one topic subscription on the peer-to-peer substrate
// to the UI loop through a command queue and an event queue.
package p2p

import (
	"context"
	"log/slog"

	"polyglot/pkg/room"
)

const queueSize = 256

// Session owns the background goroutine talking to the substrate. All
// interaction goes through Subscribe/Send/Unsubscribe (commands in) and
// TryEvent (events out); neither side ever blocks the UI loop.
type Session struct {
	commands chan Command
	events   chan Event
	log      *slog.Logger
}

// Start spawns the session goroutine. The goroutine joins the substrate
// first; a join failure is fatal to the goroutine and reported as one
// ErrNetworkCreationFailed event.
func Start(ctx context.Context, substrate Substrate, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}

	s := &Session{
		commands: make(chan Command, queueSize),
		events:   make(chan Event, queueSize),
		log:      log.With("component", "p2p.session"),
	}
	go s.run(ctx, substrate)

	return s
}

// Subscribe enqueues a subscribe command for the given topic.
func (s *Session) Subscribe(topic room.Topic) {
	s.enqueue(Command{Kind: CommandSubscribe, Topic: topic})
}

// Send enqueues an outbound message. Without an active subscription the
// session answers with an ErrChannelClosed event; it never resubscribes on
// its own.
func (s *Session) Send(message WireMessage) {
	s.enqueue(Command{Kind: CommandSendMessage, Message: message})
}

// Unsubscribe drops the active subscription. No event is emitted.
func (s *Session) Unsubscribe() {
	s.enqueue(Command{Kind: CommandUnsubscribe})
}

// TryEvent returns the next pending event without blocking.
func (s *Session) TryEvent() (Event, bool) {
	select {
	case event := <-s.events:
		return event, true
	default:
		return Event{}, false
	}
}

func (s *Session) enqueue(cmd Command) {
	select {
	case s.commands <- cmd:
	default:
		// The session goroutine has stalled or exited; dropping here keeps
		// the UI loop from blocking. The drop still has to surface as an
		// event, or a lost send or subscribe would vanish without a trace.
		s.log.Warn("Command queue full, dropping command", "kind", cmd.Kind)
		switch cmd.Kind {
		case CommandSendMessage:
			s.tryEmit(Event{Kind: EventError, Err: ErrSendFailed, Detail: "command queue full"})
		case CommandSubscribe:
			s.tryEmit(Event{Kind: EventError, Err: ErrSubscriptionFailed, Topic: cmd.Topic, Detail: "command queue full"})
		}
	}
}

// tryEmit delivers an event without blocking; it runs on the caller's
// goroutine, not the session's.
func (s *Session) tryEmit(event Event) {
	select {
	case s.events <- event:
	default:
	}
}

func (s *Session) emit(ctx context.Context, event Event) {
	select {
	case <-ctx.Done():
	case s.events <- event:
	}
}

func (s *Session) emitError(ctx context.Context, kind ErrKind, detail string) {
	s.emit(ctx, Event{Kind: EventError, Err: kind, Detail: detail})
}

func (s *Session) run(ctx context.Context, substrate Substrate) {
	s.log.Info("Session goroutine started")

	handle, err := substrate.Join(ctx)
	if err != nil {
		s.log.Error("Failed to join substrate", "error", err)
		s.emitError(ctx, ErrNetworkCreationFailed, err.Error())
		return
	}

	var active Subscription
	// Receiving on a nil channel blocks forever, so the select below waits
	// only on commands while no subscription is held.
	var deliveries <-chan Delivery

	for {
		select {
		case <-ctx.Done():
			if active != nil {
				active.Close()
			}
			s.log.Info("Session goroutine ended")
			return

		case cmd := <-s.commands:
			switch cmd.Kind {
			case CommandSubscribe:
				sub, err := handle.Subscribe(cmd.Topic)
				if err != nil {
					s.log.Error("Subscribe failed", "topic", cmd.Topic.Hex(), "error", err)
					s.emitError(ctx, ErrSubscriptionFailed, err.Error())
					continue
				}
				if active != nil {
					active.Close()
				}
				active = sub
				deliveries = sub.Deliveries()
				s.log.Info("Subscribed to topic", "topic", cmd.Topic.Hex())
				s.emit(ctx, Event{Kind: EventSubscribed, Topic: cmd.Topic})

			case CommandSendMessage:
				s.handleSend(ctx, active, cmd.Message)

			case CommandUnsubscribe:
				if active != nil {
					active.Close()
					active = nil
					deliveries = nil
				}
			}

		case delivery, ok := <-deliveries:
			if !ok {
				s.log.Warn("Inbound stream closed by substrate")
				active = nil
				deliveries = nil
				s.emitError(ctx, ErrSubscriptionLost, "")
				continue
			}
			s.handleDelivery(ctx, delivery)
		}
	}
}

func (s *Session) handleSend(ctx context.Context, active Subscription, message WireMessage) {
	if active == nil {
		s.log.Warn("No active subscription to send message")
		s.emitError(ctx, ErrChannelClosed, "")
		return
	}

	payload, err := message.Encode()
	if err != nil {
		s.log.Error("Failed to serialize message", "error", err)
		s.emitError(ctx, ErrSerializationFailed, err.Error())
		return
	}

	// Send failures are transient; the subscription stays up.
	if err := active.Send(payload); err != nil {
		s.log.Error("Failed to send message", "error", err)
		s.emitError(ctx, ErrSendFailed, err.Error())
		return
	}

	s.log.Debug("Message sent", "bytes", len(payload))
}

func (s *Session) handleDelivery(ctx context.Context, delivery Delivery) {
	message, err := ParseWireMessage(delivery.Payload)
	if err != nil {
		if delivery.Backfill {
			// Backfill may carry protocol bookkeeping payloads that are not
			// chat messages.
			s.log.Debug("Backfill payload is not a chat message", "error", err)
			return
		}
		s.log.Error("Failed to parse inbound message", "from", delivery.From, "error", err)
		s.emitError(ctx, ErrSerializationFailed, err.Error())
		return
	}

	s.log.Debug("Message received", "from", delivery.From, "bytes", len(delivery.Payload))
	s.emit(ctx, Event{Kind: EventMessageReceived, Message: message})
}
