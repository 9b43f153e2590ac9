package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/councilvote/internal/logger"
	"github.com/abrezinsky/councilvote/internal/models"
)

type fakePublicView struct {
	enabled bool
	err     error
}

func (f fakePublicView) IsPublicViewEnabled(ctx context.Context) (bool, error) {
	return f.enabled, f.err
}

func startServer(t *testing.T, hub *Hub) string {
	t.Helper()
	hub.Start()
	t.Cleanup(hub.Close)
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readMessage(t *testing.T, ws *websocket.Conn) models.WSMessage {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg models.WSMessage
	if err := ws.ReadJSON(&msg); err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	return msg
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d clients, got %d", n, hub.ClientCount())
}

func TestNew_CreatesHub(t *testing.T) {
	hub := New(logger.New(), nil)
	if hub.clients == nil || hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Fatal("expected hub channels and client map to be initialized")
	}
}

func TestServeWs_SendsPublicViewOnConnect(t *testing.T) {
	hub := New(logger.New(), fakePublicView{enabled: true})
	ws := dial(t, startServer(t, hub))

	msg := readMessage(t, ws)
	if msg.Type != "public_view" {
		t.Fatalf("expected public_view, got %s", msg.Type)
	}
	payload, ok := msg.Payload.(map[string]interface{})
	if !ok || payload["enabled"] != true {
		t.Errorf("expected enabled=true, got %v", msg.Payload)
	}
}

func TestServeWs_SkipsPublicViewOnError(t *testing.T) {
	hub := New(logger.New(), fakePublicView{err: errors.New("db down")})
	ws := dial(t, startServer(t, hub))
	waitForClients(t, hub, 1)

	hub.BroadcastMessage("tally_update", map[string]int{"count": 3})

	if msg := readMessage(t, ws); msg.Type != "tally_update" {
		t.Errorf("expected tally_update first, got %s", msg.Type)
	}
}

func TestServeWs_BroadcastToAllClients(t *testing.T) {
	hub := New(logger.New(), nil)
	url := startServer(t, hub)
	a := dial(t, url)
	b := dial(t, url)
	waitForClients(t, hub, 2)

	hub.BroadcastMessage("submission", map[string]int{"pollingUnitId": 1, "round": 2})

	for _, ws := range []*websocket.Conn{a, b} {
		msg := readMessage(t, ws)
		if msg.Type != "submission" {
			t.Errorf("expected submission, got %s", msg.Type)
		}
	}
}

func TestServeWs_ClientDisconnect(t *testing.T) {
	hub := New(logger.New(), nil)
	ws := dial(t, startServer(t, hub))
	waitForClients(t, hub, 1)

	ws.Close()

	waitForClients(t, hub, 0)
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := New(logger.New(), nil)
	ws := dial(t, startServer(t, hub))
	waitForClients(t, hub, 1)

	hub.Close()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := ws.ReadMessage(); err == nil {
		t.Error("expected connection to close after hub stops")
	}
	waitForClients(t, hub, 0)
}

func TestHub_BroadcastAfterCloseDoesNotBlock(t *testing.T) {
	hub := New(logger.New(), nil)
	hub.Start()
	hub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.BroadcastMessage("tally_update", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("BroadcastMessage blocked after Close")
	}
}

func TestHub_MultipleInstances_NoGlobalState(t *testing.T) {
	hub1 := New(logger.New(), nil)
	hub2 := New(logger.New(), nil)
	ws := dial(t, startServer(t, hub1))
	startServer(t, hub2)
	waitForClients(t, hub1, 1)

	if hub2.ClientCount() != 0 {
		t.Errorf("expected hub2 to have no clients, got %d", hub2.ClientCount())
	}
	_ = ws
}
