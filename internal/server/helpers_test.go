package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// Tests in this package drive the hub's loop-owned operations directly from
// the test goroutine, which preserves the single-writer discipline without
// running the event loop.

func newTestHub() *Hub {
	return NewHub(NewConfig())
}

// newTestClient creates a connection-less client and registers it with the hub
// so safeSend will deliver to its buffered send channel.
func newTestClient(h *Hub) *Client {
	c := NewClient(nil, h, "test")
	h.mutex.Lock()
	h.clients[c] = true
	h.mutex.Unlock()
	return c
}

// joinedClient registers a client and routes a join frame for it.
func joinedClient(t *testing.T, h *Hub, room, username string) *Client {
	t.Helper()
	c := newTestClient(h)
	h.route(c, []byte(`{"type":"join","room":"`+room+`","sender":"`+username+`"}`))
	return c
}

type event map[string]any

// recvEvents drains and decodes everything buffered on the client's send channel.
func recvEvents(t *testing.T, c *Client) []event {
	t.Helper()
	var out []event
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return out
			}
			var e event
			require.NoError(t, json.Unmarshal(data, &e))
			out = append(out, e)
		default:
			return out
		}
	}
}

func eventTypes(events []event) []string {
	types := make([]string, 0, len(events))
	for _, e := range events {
		if s, ok := e["type"].(string); ok {
			types = append(types, s)
		}
	}
	return types
}

// drain discards any pending events so a test can assert on what follows.
func drain(t *testing.T, clients ...*Client) {
	t.Helper()
	for _, c := range clients {
		recvEvents(t, c)
	}
}

func stringSlice(t *testing.T, e event, key string) []string {
	t.Helper()
	raw, ok := e[key].([]any)
	require.True(t, ok, "event field %q is not a list: %v", key, e)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		require.True(t, ok, "event field %q holds a non-string: %v", key, v)
		out = append(out, s)
	}
	return out
}
