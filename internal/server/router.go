// Package server routes inbound frames to their handlers. Every frame is
// decoded into the tagged Envelope, dispatched on its type, and validated
// before any state changes; a frame that fails decoding, names an unknown
// type, or is missing required fields earns the sender an error event and
// nothing else. A valid frame whose sender lacks membership in the target room
// is dropped silently, a deliberate asymmetry with field validation.
package server

import (
	"strings"
	"time"
)

// route decodes and dispatches one inbound frame.
//
// Must be called from the hub's event loop.
func (h *Hub) route(c *Client, raw []byte) {
	var msg Envelope
	if err := decodeMessage(raw, &msg); err != nil {
		h.safeSend(c, newErrorEvent("Invalid JSON"))
		return
	}

	switch msg.Type {
	case TypeJoin:
		h.handleJoin(c, msg)
	case TypeLeave:
		h.handleLeave(c, msg)
	case TypeMessage:
		h.handleMessage(c, msg)
	case TypeReaction:
		h.handleReaction(c, msg)
	case TypePresenceRequest:
		h.handlePresenceRequest(c, msg)
	case TypeTyping:
		h.handleTyping(c, msg)
	default:
		h.safeSend(c, newErrorEvent("Unknown message type: "+string(msg.Type)))
	}
}

// field pairs a wire field name with its received value for validation.
type field struct {
	name, value string
}

// validate checks that every required field is a non-empty string. On failure
// it replies with an error event naming the offending fields and returns
// false; the caller must then stop without side effects.
func (h *Hub) validate(c *Client, fields ...field) bool {
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return true
	}
	h.safeSend(c, newErrorEvent("Missing or empty fields: "+strings.Join(missing, ", ")))
	return false
}

// handleJoin sets the sender's display identity, overwriting any prior value,
// and runs the room join sequence. Identity is never reverted afterwards, not
// even by leave or disconnect.
func (h *Hub) handleJoin(c *Client, msg Envelope) {
	if !h.validate(c, field{"room", msg.Room}, field{"sender", msg.Sender}) {
		return
	}
	c.username = msg.Sender
	h.joinRoom(c, msg.Room)
}

func (h *Hub) handleLeave(c *Client, msg Envelope) {
	if !h.validate(c, field{"room", msg.Room}) {
		return
	}
	h.leaveRoom(c, msg.Room)
}

// handleMessage echoes a chat message to the whole room, sender included. A
// missing timestamp is stamped with server time; a client-supplied one is
// preserved unchanged. Senders outside the room are dropped silently.
func (h *Hub) handleMessage(c *Client, msg Envelope) {
	if !h.validate(c, field{"room", msg.Room}, field{"content", msg.Content}) {
		return
	}
	if !h.isRoomMember(c, msg.Room) {
		return
	}
	h.broadcastToRoom(msg.Room, newChatEvent(msg.Room, c.username, msg.Content, orNow(msg.Timestamp), msg.Reply), nil)
}

func (h *Hub) handleReaction(c *Client, msg Envelope) {
	if !h.validate(c, field{"room", msg.Room}, field{"target", msg.Target}, field{"emoji", msg.Emoji}) {
		return
	}
	if !h.isRoomMember(c, msg.Room) {
		return
	}
	h.broadcastToRoom(msg.Room, newReactionEvent(msg.Room, c.username, msg.Target, msg.Emoji, orNow(msg.Timestamp)), nil)
}

func (h *Hub) handlePresenceRequest(c *Client, msg Envelope) {
	if !h.validate(c, field{"room", msg.Room}) {
		return
	}
	if !h.isRoomMember(c, msg.Room) {
		return
	}
	h.broadcastPresence(msg.Room)
}

// handleTyping validates the room field and defers the membership and
// identity checks to setTyping, which ignores unqualified callers silently.
func (h *Hub) handleTyping(c *Client, msg Envelope) {
	if !h.validate(c, field{"room", msg.Room}) {
		return
	}
	h.setTyping(c, msg.Room, msg.Typing)
}

// orNow substitutes the current server time, in Unix milliseconds, for an
// absent timestamp.
func orNow(timestamp int64) int64 {
	if timestamp != 0 {
		return timestamp
	}
	return time.Now().UnixMilli()
}
