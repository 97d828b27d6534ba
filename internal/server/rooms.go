// Package server implements the room directory: which connections belong to
// which rooms, and the event sequences emitted when membership changes.
package server

import "log"

// joinRoom adds the client to a room, creating the room on first join. The
// insert is idempotent; rejoining re-emits the notification sequence. Existing
// members learn about the newcomer, the joiner gets a confirmation, and the
// whole room (joiner included) gets a fresh presence snapshot.
//
// Must be called from the hub's event loop.
func (h *Hub) joinRoom(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}

	log.Printf("Client %s (%s) joined room %q (%d members)", c.id, c.username, room, len(members))

	h.broadcastToRoom(room, newUserJoinedEvent(room, c.username), c)
	h.safeSend(c, newSystemEvent("Joined room: "+room))
	h.broadcastPresence(room)
}

// leaveRoom removes the client from a room and emits the leave sequence:
// typing-set cleanup, a user_left notification to the remaining members, a
// confirmation to the leaver, and a refreshed presence snapshot. An absent
// room or membership makes the whole call a no-op, which keeps an explicit
// leave racing a disconnect sweep harmless.
//
// Must be called from the hub's event loop.
func (h *Hub) leaveRoom(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		delete(c.rooms, room)
		return
	}
	if _, isMember := members[c]; !isMember {
		delete(c.rooms, room)
		return
	}

	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
	delete(c.rooms, room)

	log.Printf("Client %s (%s) left room %q (%d members remain)", c.id, c.username, room, len(members))

	h.clearTyping(c, room)
	h.broadcastToRoom(room, newUserLeftEvent(room, c.username), nil)
	// No-op on abrupt disconnect: the leaver is simply no longer reachable.
	h.safeSend(c, newSystemEvent("Left room: "+room))
	h.broadcastPresence(room)
}

// isRoomMember reports whether the client currently belongs to the room.
func (h *Hub) isRoomMember(c *Client, room string) bool {
	members, ok := h.rooms[room]
	if !ok {
		return false
	}
	_, isMember := members[c]
	return isMember
}
