package relay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"polyglot/pkg/logger"
)

func newTestHubServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub(logger.Discard())
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(server.Close)
	return hub, server
}

func TestHubPublishReachesOtherMembersOnly(t *testing.T) {
	_, server := newTestHubServer(t)

	sender := dial(t, server)
	receiver := dial(t, server)

	sendFrame(t, sender, Frame{Type: FrameJoin, Topic: "alpha"})
	sendFrame(t, receiver, Frame{Type: FrameJoin, Topic: "alpha"})

	// Give the hub a moment to register both joins.
	time.Sleep(50 * time.Millisecond)

	sendFrame(t, sender, Frame{Type: FramePublish, Topic: "alpha", Payload: []byte("hi"), From: "peer-a"})

	got := readFrame(t, receiver)
	if got.Type != FrameMessage {
		t.Fatalf("frame type = %q, want %q", got.Type, FrameMessage)
	}
	if string(got.Payload) != "hi" || got.From != "peer-a" {
		t.Fatalf("unexpected frame %+v", got)
	}

	assertNoFrame(t, sender)
}

func TestHubReplaysHistoryAsBackfill(t *testing.T) {
	_, server := newTestHubServer(t)

	sender := dial(t, server)
	sendFrame(t, sender, Frame{Type: FrameJoin, Topic: "beta"})
	sendFrame(t, sender, Frame{Type: FramePublish, Topic: "beta", Payload: []byte("one"), From: "peer-a"})
	sendFrame(t, sender, Frame{Type: FramePublish, Topic: "beta", Payload: []byte("two"), From: "peer-a"})

	time.Sleep(50 * time.Millisecond)

	late := dial(t, server)
	sendFrame(t, late, Frame{Type: FrameJoin, Topic: "beta"})

	first := readFrame(t, late)
	second := readFrame(t, late)

	if first.Type != FrameBackfill || second.Type != FrameBackfill {
		t.Fatalf("expected backfill frames, got %q then %q", first.Type, second.Type)
	}
	if string(first.Payload) != "one" || string(second.Payload) != "two" {
		t.Fatalf("backfill out of order: %q then %q", first.Payload, second.Payload)
	}
}

func TestHubLeaveStopsDelivery(t *testing.T) {
	hub, server := newTestHubServer(t)

	sender := dial(t, server)
	receiver := dial(t, server)

	sendFrame(t, sender, Frame{Type: FrameJoin, Topic: "gamma"})
	sendFrame(t, receiver, Frame{Type: FrameJoin, Topic: "gamma"})
	time.Sleep(50 * time.Millisecond)

	sendFrame(t, receiver, Frame{Type: FrameLeave, Topic: "gamma"})
	time.Sleep(50 * time.Millisecond)

	sendFrame(t, sender, Frame{Type: FramePublish, Topic: "gamma", Payload: []byte("gone"), From: "peer-a"})

	assertNoFrame(t, receiver)

	rooms, peers := hub.Stats()
	if rooms != 1 || peers != 1 {
		t.Fatalf("stats = (%d rooms, %d peers), want (1, 1)", rooms, peers)
	}
}

func TestHubIgnoresMalformedFrames(t *testing.T) {
	_, server := newTestHubServer(t)

	sender := dial(t, server)
	if err := sender.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write malformed frame: %v", err)
	}

	// The connection must survive the junk frame.
	sendFrame(t, sender, Frame{Type: FrameJoin, Topic: "delta"})
	sendFrame(t, sender, Frame{Type: FramePublish, Topic: "delta", Payload: []byte("still here"), From: "peer-a"})
	time.Sleep(50 * time.Millisecond)

	late := dial(t, server)
	sendFrame(t, late, Frame{Type: FrameJoin, Topic: "delta"})

	got := readFrame(t, late)
	if string(got.Payload) != "still here" {
		t.Fatalf("payload = %q, want %q", got.Payload, "still here")
	}
}

func TestPublishDuringDisconnectDoesNotPanic(t *testing.T) {
	hub := NewHub(logger.Discard())

	for i := 0; i < 2000; i++ {
		sender := &client{id: "sender", send: make(chan []byte, clientSendBuffer)}
		receiver := &client{id: "receiver", send: make(chan []byte, 1)}
		hub.join(sender, "race")
		hub.join(receiver, "race")

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.publish(sender, Frame{Type: FramePublish, Topic: "race", Payload: []byte("x"), From: "peer-a"})
		}()
		go func() {
			defer wg.Done()
			hub.dropClient(receiver)
		}()
		wg.Wait()

		hub.dropClient(sender)
	}

	rooms, peers := hub.Stats()
	if rooms != 0 || peers != 0 {
		t.Fatalf("stats = (%d rooms, %d peers), want empty hub", rooms, peers)
	}
}

func TestEnqueueAfterDropIsIgnored(t *testing.T) {
	hub := NewHub(logger.Discard())

	c := &client{id: "gone", send: make(chan []byte, 1)}
	hub.join(c, "alpha")
	hub.dropClient(c)

	// Must neither panic nor deliver anything.
	hub.enqueue(c, Frame{Type: FrameMessage, Topic: "alpha", Payload: []byte("late")})

	if _, ok := <-c.send; ok {
		t.Fatal("expected the send channel to be closed with no pending frame")
	}
}

func TestWritePumpExitClosesConnection(t *testing.T) {
	serverConns := make(chan *websocket.Conn, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(server.Close)

	_ = dial(t, server)
	serverConn := <-serverConns

	hub := NewHub(logger.Discard())
	c := &client{id: "writer", conn: serverConn, send: make(chan []byte, 1)}

	done := make(chan struct{})
	go func() {
		hub.writePump(c)
		close(done)
	}()

	hub.mu.Lock()
	c.closed = true
	close(c.send)
	hub.mu.Unlock()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("write pump did not exit")
	}

	if err := serverConn.WriteMessage(websocket.TextMessage, []byte("late")); err == nil {
		t.Fatal("expected writes to fail once the pump has shut the connection")
	}
}

func TestDisconnectRemovesMemberFromRooms(t *testing.T) {
	hub, server := newTestHubServer(t)

	conn := dial(t, server)
	sendFrame(t, conn, Frame{Type: FrameJoin, Topic: "teardown"})

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, peers := hub.Stats(); peers == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("peer never joined")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Kill the peer's connection; the hub side must notice, drop the
	// member, and close its pumps rather than leave a stale room entry.
	_ = conn.Close()

	for {
		rooms, peers := hub.Stats()
		if rooms == 0 && peers == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("stale member after disconnect: %d rooms, %d peers", rooms, peers)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, frame Frame) {
	t.Helper()

	data, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}

	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	return frame
}

func assertNoFrame(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	if _, data, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected no frame, got %s", data)
	}
}
