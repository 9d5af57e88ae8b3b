package p2p

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"polyglot/pkg/relay"
	"polyglot/pkg/room"
)

// RelaySubstrate is the default Substrate implementation: a websocket
// connection to a relay that groups peers by topic.
type RelaySubstrate struct {
	url    string
	peerID string
	log    *slog.Logger
}

func NewRelaySubstrate(url string, peerID string, log *slog.Logger) *RelaySubstrate {
	if log == nil {
		log = slog.Default()
	}

	return &RelaySubstrate{
		url:    url,
		peerID: peerID,
		log:    log.With("component", "p2p.relay"),
	}
}

// Join dials the relay and starts the read pump. The connection lives until
// ctx ends or the relay drops it; either way every open subscription stream
// is closed, which the session reports as a lost subscription.
func (r *RelaySubstrate) Join(ctx context.Context) (Handle, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", r.url, err)
	}

	h := &relayHandle{
		conn:   conn,
		peerID: r.peerID,
		log:    r.log,
		subs:   make(map[string]*relaySubscription),
	}

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	go h.readPump()

	r.log.Info("Joined relay", "url", r.url, "peer_id", r.peerID)

	return h, nil
}

type relayHandle struct {
	conn   *websocket.Conn
	peerID string
	log    *slog.Logger

	// mu guards the subscription map and serializes connection writes;
	// gorilla websocket connections allow only one concurrent writer.
	mu   sync.Mutex
	subs map[string]*relaySubscription
}

func (h *relayHandle) Subscribe(topic room.Topic) (Subscription, error) {
	sub := &relaySubscription{
		handle:     h,
		topic:      topic.Hex(),
		deliveries: make(chan Delivery, queueSize),
	}

	h.mu.Lock()
	if old, ok := h.subs[sub.topic]; ok {
		delete(h.subs, sub.topic)
		old.closeStream()
	}
	h.subs[sub.topic] = sub
	err := h.writeFrameLocked(relay.Frame{Type: relay.FrameJoin, Topic: sub.topic, From: h.peerID})
	h.mu.Unlock()

	if err != nil {
		sub.Close()
		return nil, fmt.Errorf("join topic %s: %w", sub.topic, err)
	}

	return sub, nil
}

func (h *relayHandle) writeFrame(frame relay.Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.writeFrameLocked(frame)
}

func (h *relayHandle) writeFrameLocked(frame relay.Frame) error {
	return h.conn.WriteJSON(frame)
}

func (h *relayHandle) readPump() {
	for {
		_, data, err := h.conn.ReadMessage()
		if err != nil {
			h.log.Warn("Relay connection closed", "error", err)
			h.closeAllStreams()
			return
		}

		var frame relay.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.log.Error("Malformed relay frame", "error", err)
			continue
		}

		switch frame.Type {
		case relay.FrameMessage, relay.FrameBackfill:
			h.route(frame)
		default:
			h.log.Debug("Ignoring relay frame", "type", frame.Type)
		}
	}
}

func (h *relayHandle) route(frame relay.Frame) {
	h.mu.Lock()
	sub := h.subs[frame.Topic]
	h.mu.Unlock()

	if sub == nil {
		return
	}

	delivery := Delivery{
		Payload:  frame.Payload,
		From:     frame.From,
		Backfill: frame.Type == relay.FrameBackfill,
	}

	select {
	case sub.deliveries <- delivery:
	default:
		h.log.Warn("Delivery stream full, dropping payload", "topic", frame.Topic)
	}
}

func (h *relayHandle) closeAllStreams() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic, sub := range h.subs {
		delete(h.subs, topic)
		sub.closeStream()
	}
}

type relaySubscription struct {
	handle     *relayHandle
	topic      string
	deliveries chan Delivery
	closed     sync.Once
}

func (s *relaySubscription) Send(payload []byte) error {
	return s.handle.writeFrame(relay.Frame{
		Type:    relay.FramePublish,
		Topic:   s.topic,
		Payload: payload,
		From:    s.handle.peerID,
	})
}

func (s *relaySubscription) Deliveries() <-chan Delivery {
	return s.deliveries
}

func (s *relaySubscription) Close() {
	s.handle.mu.Lock()
	if s.handle.subs[s.topic] == s {
		delete(s.handle.subs, s.topic)
		_ = s.handle.writeFrameLocked(relay.Frame{Type: relay.FrameLeave, Topic: s.topic, From: s.handle.peerID})
	}
	s.handle.mu.Unlock()

	s.closeStream()
}

func (s *relaySubscription) closeStream() {
	s.closed.Do(func() {
		close(s.deliveries)
	})
}
