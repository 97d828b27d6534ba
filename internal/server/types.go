// Package server defines shared transport types and utility helpers that are
// reused across client and hub logic.
package server

import "strings"

// Frame carries one raw wire frame from a client's read pump to the hub's
// event loop, which owns all decoding and routing.
type Frame struct {
	Client *Client
	Data   []byte
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
