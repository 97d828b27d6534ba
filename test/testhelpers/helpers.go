// Package testhelpers provides common utilities and helper functions for
// testing the FluxChat server.
//
// This package contains reusable test utilities that are shared across unit
// and integration tests: creating test servers, dialing WebSocket clients,
// and asserting on protocol events, to reduce duplication in test files.
package testhelpers

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// Event is a decoded wire event, keyed by field name.
type Event map[string]any

// The server's write pump coalesces queued events into a single text frame,
// newline separated. ReceiveEvent returns one event at a time, so any extra
// events from a coalesced frame are buffered here per connection.
var (
	pendingMu sync.Mutex
	pending   = map[*websocket.Conn][][]byte{}
)

// nextPending pops a buffered event payload for the connection, if any.
func nextPending(conn *websocket.Conn) ([]byte, bool) {
	pendingMu.Lock()
	defer pendingMu.Unlock()

	queue := pending[conn]
	if len(queue) == 0 {
		return nil, false
	}
	data := queue[0]
	if len(queue) == 1 {
		delete(pending, conn)
	} else {
		pending[conn] = queue[1:]
	}
	return data, true
}

// splitFrame separates a coalesced frame into individual event payloads,
// returning the first and buffering the rest for the connection.
func splitFrame(conn *websocket.Conn, frame []byte) []byte {
	parts := bytes.Split(frame, []byte{'\n'})
	payloads := make([][]byte, 0, len(parts))
	for _, p := range parts {
		if len(bytes.TrimSpace(p)) > 0 {
			payloads = append(payloads, p)
		}
	}
	if len(payloads) == 0 {
		return frame
	}
	if len(payloads) > 1 {
		pendingMu.Lock()
		pending[conn] = append(pending[conn], payloads[1:]...)
		pendingMu.Unlock()
	}
	return payloads[0]
}

// CreateTestServer creates a test HTTP server with the given handler.
// It returns a running httptest.Server that should be closed after use.
func CreateTestServer(handler http.Handler) *httptest.Server {
	return httptest.NewServer(handler)
}

// AssertStatusCode checks if the HTTP response has the expected status code.
// It fails the test with a descriptive error message if the status codes don't match.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d", expected, resp.StatusCode)
	}
}

// MakeRequest creates and executes an HTTP request, returning the response.
// It includes a 5-second timeout and fails the test if the request cannot be
// created or executed successfully.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(method, url, http.NoBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

// ConnectWebSocket creates a WebSocket connection to the specified URL with
// the given Origin header. It returns the connection or an error.
func ConnectWebSocket(url, origin string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	headers := http.Header{}
	if origin != "" {
		headers.Set("Origin", origin)
	}

	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

// SendEnvelope marshals the given value and sends it as a text frame.
func SendEnvelope(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("Failed to send envelope: %v", err)
	}
}

// SendRaw sends a raw byte payload as a text frame.
func SendRaw(t *testing.T, conn *websocket.Conn, data []byte) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("Failed to send raw payload: %v", err)
	}
}

// ReceiveEvent reads the next event from the connection, failing the test if
// nothing arrives within the timeout.
func ReceiveEvent(t *testing.T, conn *websocket.Conn, timeout time.Duration) Event {
	t.Helper()

	data, ok := nextPending(conn)
	if !ok {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			t.Fatalf("Failed to set read deadline: %v", err)
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to receive event: %v", err)
		}
		data = splitFrame(conn, raw)
	}

	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("Failed to decode event %q: %v", data, err)
	}
	return ev
}

// ExpectEvent reads the next event and fails unless its type matches.
func ExpectEvent(t *testing.T, conn *websocket.Conn, eventType string) Event {
	t.Helper()

	ev := ReceiveEvent(t, conn, 2*time.Second)
	if got, _ := ev["type"].(string); got != eventType {
		t.Fatalf("Expected event type %q, got %v", eventType, ev)
	}
	return ev
}

// ExpectNoEvent fails if any event arrives on the connection within the timeout.
func ExpectNoEvent(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()

	if data, ok := nextPending(conn); ok {
		t.Fatalf("Expected no event, but received %q", data)
	}

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}

	_, data, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("Expected no event, but received %q", data)
	}
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return
	}
	t.Fatalf("Unexpected error while waiting for absence of events: %v", err)
}

// Users extracts a string list field from an event.
func Users(t *testing.T, ev Event, key string) []string {
	t.Helper()

	raw, ok := ev[key].([]any)
	if !ok {
		t.Fatalf("Event field %q is not a list: %v", key, ev)
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			t.Fatalf("Event field %q holds a non-string: %v", key, v)
		}
		out = append(out, s)
	}
	return out
}

// CloseWebSocket gracefully closes a WebSocket connection.
func CloseWebSocket(conn *websocket.Conn) error {
	pendingMu.Lock()
	delete(pending, conn)
	pendingMu.Unlock()

	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		return err
	}
	return conn.Close()
}
