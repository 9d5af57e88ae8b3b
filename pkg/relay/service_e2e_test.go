package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"polyglot/pkg/config"
	"polyglot/pkg/logger"
)

func TestRelayServiceRunE2E(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Default()
	cfg.Relay.Host = "127.0.0.1"
	cfg.Relay.Port = freeTCPPort(t)

	svc, err := NewService(cfg, logger.Discard())
	require.NoError(t, err)

	runErr := make(chan error, 1)
	go func() {
		runErr <- svc.Run(ctx)
	}()

	base := fmt.Sprintf("127.0.0.1:%d", cfg.Relay.Port)
	waitForHealthz(t, "http://"+base+"/healthz")

	wsURL := "ws://" + base + "/ws"
	sender, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer sender.Close()

	receiver, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer receiver.Close()

	require.NoError(t, sender.WriteJSON(Frame{Type: FrameJoin, Topic: "e2e"}))
	require.NoError(t, receiver.WriteJSON(Frame{Type: FrameJoin, Topic: "e2e"}))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, sender.WriteJSON(Frame{Type: FramePublish, Topic: "e2e", Payload: []byte("ping"), From: "peer-a"}))

	require.NoError(t, receiver.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got Frame
	require.NoError(t, receiver.ReadJSON(&got))
	require.Equal(t, FrameMessage, got.Type)
	require.Equal(t, "ping", string(got.Payload))
	require.Equal(t, "peer-a", got.From)

	status, err := http.Get("http://" + base + "/status")
	require.NoError(t, err)
	defer status.Body.Close()

	var snapshot statusResponse
	require.NoError(t, json.NewDecoder(status.Body).Decode(&snapshot))
	require.Equal(t, "ok", snapshot.Status)
	require.Equal(t, 1, snapshot.Rooms)
	require.Equal(t, 2, snapshot.Peers)

	cancel()
	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not shut down")
	}
}

func freeTCPPort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	return listener.Addr().(*net.TCPAddr).Port
}

func waitForHealthz(t *testing.T, url string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("relay never became healthy")
}
