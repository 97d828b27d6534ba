// Package integration contains integration tests for the FluxChat server.
//
// These tests verify that multiple components work together correctly by
// testing the complete system behavior with real HTTP servers, WebSocket
// connections, and end-to-end protocol exchanges.
package integration

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/fluxchat/fluxchat/internal/server"
	"github.com/fluxchat/fluxchat/test/testhelpers"
	"github.com/gorilla/websocket"
)

const testOrigin = "http://localhost:8080"

// newRelay starts a complete relay (hub plus HTTP surface) on an httptest
// server and returns the WebSocket URL. The hub is shut down on cleanup.
func newRelay(t *testing.T) (*server.Server, string) {
	t.Helper()

	cfg := server.NewConfig()
	cfg.AllowedOrigins = []string{"*"}

	srv := server.NewServer(cfg)
	srv.StartHub()

	testServer := httptest.NewServer(srv.Routes())
	t.Cleanup(func() {
		testServer.Close()
		_ = srv.Hub().Shutdown(2 * time.Second)
	})

	u, err := url.Parse(testServer.URL)
	if err != nil {
		t.Fatalf("Failed to parse test server URL: %v", err)
	}
	u.Scheme = "ws"
	u.Path = "/ws"
	return srv, u.String()
}

// joinRoom connects a client and joins the given room, consuming the system
// and presence confirmations.
func joinRoom(t *testing.T, wsURL, room, sender string) *websocket.Conn {
	t.Helper()

	conn, err := testhelpers.ConnectWebSocket(wsURL, testOrigin)
	if err != nil {
		t.Fatalf("Failed to connect %s: %v", sender, err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	testhelpers.SendEnvelope(t, conn, map[string]any{"type": "join", "room": room, "sender": sender})
	testhelpers.ExpectEvent(t, conn, "system")
	testhelpers.ExpectEvent(t, conn, "presence")
	return conn
}

// TestWebSocketEndpoint verifies upgrade handling over a real server.
func TestWebSocketEndpoint(t *testing.T) {
	_, wsURL := newRelay(t)
	httpURL := "http" + strings.TrimPrefix(wsURL, "ws")
	httpURL = strings.TrimSuffix(httpURL, "/ws")

	t.Run("Successful WebSocket Connection", func(t *testing.T) {
		conn, err := testhelpers.ConnectWebSocket(wsURL, testOrigin)
		if err != nil {
			t.Fatalf("Failed to connect to WebSocket: %v", err)
		}
		if err := testhelpers.CloseWebSocket(conn); err != nil {
			t.Errorf("Failed to close connection: %v", err)
		}
	})

	t.Run("Invalid HTTP Method", func(t *testing.T) {
		resp, err := http.Post(httpURL+"/ws", "text/plain", strings.NewReader("test"))
		if err != nil {
			t.Fatalf("Failed to make POST request: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()
		testhelpers.AssertStatusCode(t, resp, http.StatusMethodNotAllowed)
	})

	t.Run("GET Without WebSocket Headers", func(t *testing.T) {
		resp, err := http.Get(httpURL + "/ws")
		if err != nil {
			t.Fatalf("Failed to make GET request: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()
		testhelpers.AssertStatusCode(t, resp, http.StatusBadRequest)
	})
}

// TestJoinScenario walks the first-join handshake: the joiner gets a system
// confirmation and a presence list containing only itself.
func TestJoinScenario(t *testing.T) {
	_, wsURL := newRelay(t)

	conn, err := testhelpers.ConnectWebSocket(wsURL, testOrigin)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = conn.Close() }()

	testhelpers.SendEnvelope(t, conn, map[string]any{"type": "join", "room": "general", "sender": "alice"})

	system := testhelpers.ExpectEvent(t, conn, "system")
	if system["content"] != "Joined room: general" {
		t.Errorf("Unexpected join confirmation: %v", system)
	}

	presence := testhelpers.ExpectEvent(t, conn, "presence")
	users := testhelpers.Users(t, presence, "users")
	if len(users) != 1 || users[0] != "alice" {
		t.Errorf("Expected presence [alice], got %v", users)
	}
}

// TestInvalidJSONGetsErrorReply verifies the malformed-input branch of the
// error taxonomy: a truncated frame earns an error event and nothing else.
func TestInvalidJSONGetsErrorReply(t *testing.T) {
	_, wsURL := newRelay(t)

	conn, err := testhelpers.ConnectWebSocket(wsURL, testOrigin)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = conn.Close() }()

	testhelpers.SendRaw(t, conn, []byte(`{"type":"message"`))

	errEvent := testhelpers.ExpectEvent(t, conn, "error")
	if errEvent["message"] != "Invalid JSON" {
		t.Errorf("Expected Invalid JSON error, got %v", errEvent)
	}
}

// TestUnknownTypeGetsErrorReply verifies the unknown-operation branch.
func TestUnknownTypeGetsErrorReply(t *testing.T) {
	_, wsURL := newRelay(t)

	conn, err := testhelpers.ConnectWebSocket(wsURL, testOrigin)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = conn.Close() }()

	testhelpers.SendEnvelope(t, conn, map[string]any{"type": "broadcast_all", "room": "general"})

	errEvent := testhelpers.ExpectEvent(t, conn, "error")
	if msg, _ := errEvent["message"].(string); !strings.Contains(msg, "broadcast_all") {
		t.Errorf("Error should name the unknown type, got %v", errEvent)
	}
}

// TestNonMemberMessageSilentlyDropped verifies the deliberate asymmetry: a
// well-formed message to a room the sender never joined produces neither a
// broadcast nor an error reply.
func TestNonMemberMessageSilentlyDropped(t *testing.T) {
	_, wsURL := newRelay(t)
	member := joinRoom(t, wsURL, "general", "alice")

	outsider, err := testhelpers.ConnectWebSocket(wsURL, testOrigin)
	if err != nil {
		t.Fatalf("Failed to connect outsider: %v", err)
	}
	defer func() { _ = outsider.Close() }()

	testhelpers.SendEnvelope(t, outsider, map[string]any{"type": "message", "room": "general", "content": "hi"})

	testhelpers.ExpectNoEvent(t, outsider, 300*time.Millisecond)
	testhelpers.ExpectNoEvent(t, member, 300*time.Millisecond)
}
