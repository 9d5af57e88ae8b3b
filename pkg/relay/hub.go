package relay

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	clientSendBuffer = 256
	historyLimit     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The relay carries opaque chat payloads between cooperating peers;
	// origin checks add nothing here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	// closed is guarded by Hub.mu. Once set, send is closed and no
	// further frames may be enqueued.
	closed bool
}

type historyEntry struct {
	payload []byte
	from    string
}

// Hub tracks connected peers and the topic rooms they joined, and fans
// published payloads out to the other members of a room.
type Hub struct {
	log *slog.Logger

	mu      sync.RWMutex
	rooms   map[string]map[*client]bool
	history map[string][]historyEntry
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}

	return &Hub{
		log:     log.With("component", "relay.hub"),
		rooms:   make(map[string]map[*client]bool),
		history: make(map[string][]historyEntry),
	}
}

// HandleWS upgrades one peer connection and runs its read loop until the
// peer disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, clientSendBuffer),
	}
	h.log.Debug("Peer connected", "client_id", c.id, "remote", r.RemoteAddr)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.dropClient(c)
		_ = c.conn.Close()
		h.log.Debug("Peer disconnected", "client_id", c.id)
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.log.Warn("Malformed frame from peer", "client_id", c.id, "error", err)
			continue
		}
		if frame.Topic == "" {
			continue
		}

		switch frame.Type {
		case FrameJoin:
			h.join(c, frame.Topic)
		case FrameLeave:
			h.leave(c, frame.Topic)
		case FramePublish:
			h.publish(c, frame)
		default:
			h.log.Debug("Ignoring frame", "type", frame.Type, "client_id", c.id)
		}
	}
}

func (h *Hub) writePump(c *client) {
	// Closing the connection here unblocks the peer's read loop, so a
	// write failure drops the member instead of leaving it stale.
	defer func() { _ = c.conn.Close() }()

	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (h *Hub) join(c *client, topic string) {
	h.mu.Lock()
	members, ok := h.rooms[topic]
	if !ok {
		members = make(map[*client]bool)
		h.rooms[topic] = members
	}
	members[c] = true
	backlog := append([]historyEntry(nil), h.history[topic]...)
	h.mu.Unlock()

	h.log.Info("Peer joined room", "client_id", c.id, "topic", topic, "members", len(members))

	// Replay recent room history so a newcomer sees the ongoing conversation.
	for _, entry := range backlog {
		h.enqueue(c, Frame{Type: FrameBackfill, Topic: topic, Payload: entry.payload, From: entry.from})
	}
}

func (h *Hub) leave(c *client, topic string) {
	h.mu.Lock()
	if members, ok := h.rooms[topic]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, topic)
			delete(h.history, topic)
		}
	}
	h.mu.Unlock()

	h.log.Info("Peer left room", "client_id", c.id, "topic", topic)
}

func (h *Hub) publish(c *client, frame Frame) {
	from := frame.From
	if from == "" {
		from = c.id
	}
	out := Frame{Type: FrameMessage, Topic: frame.Topic, Payload: frame.Payload, From: from}

	h.mu.Lock()
	entries := append(h.history[frame.Topic], historyEntry{payload: frame.Payload, from: from})
	if len(entries) > historyLimit {
		entries = entries[len(entries)-historyLimit:]
	}
	h.history[frame.Topic] = entries

	recipients := make([]*client, 0, len(h.rooms[frame.Topic]))
	for member := range h.rooms[frame.Topic] {
		if member != c {
			recipients = append(recipients, member)
		}
	}
	h.mu.Unlock()

	for _, member := range recipients {
		h.enqueue(member, out)
	}
}

func (h *Hub) enqueue(c *client, frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.log.Error("Failed to marshal frame", "error", err)
		return
	}

	// The read lock excludes dropClient, so closed cannot flip (and send
	// cannot be closed) between the check and the send below.
	h.mu.RLock()
	defer h.mu.RUnlock()

	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		// Client too slow, drop.
		h.log.Warn("Peer send buffer full, dropping frame", "client_id", c.id)
	}
}

// dropClient removes the peer from every room and closes its send channel.
// Closing happens under the same lock enqueue holds while sending, so a
// fan-out racing a disconnect can never hit a closed channel.
func (h *Hub) dropClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, topic)
			delete(h.history, topic)
		}
	}

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Stats reports room and peer counts for the health endpoint.
func (h *Hub) Stats() (rooms int, peers int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[*client]bool)
	for _, members := range h.rooms {
		for member := range members {
			seen[member] = true
		}
	}

	return len(h.rooms), len(seen)
}
