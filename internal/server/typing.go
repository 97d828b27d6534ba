// Package server tracks per-room typing indicators. Typing sets follow the
// same lazy-create/eager-delete lifecycle as rooms but are keyed
// independently, so a room normally exists with no typing entry at all.
package server

// setTyping adds or removes the client's display identity from a room's typing
// set and broadcasts the resulting list to the whole room. The call is
// silently ignored unless the client is a member of the room and has a display
// identity; the broadcast fires unconditionally on success, even when the set
// did not change.
//
// Must be called from the hub's event loop.
func (h *Hub) setTyping(c *Client, room string, isTyping bool) {
	if !h.isRoomMember(c, room) || c.username == "" {
		return
	}

	set, ok := h.typing[room]
	if isTyping {
		if !ok {
			set = make(map[string]struct{})
			h.typing[room] = set
		}
		set[c.username] = struct{}{}
	} else if ok {
		delete(set, c.username)
		if len(set) == 0 {
			delete(h.typing, room)
		}
	}

	h.broadcastToRoom(room, newTypingEvent(room, h.typingSnapshot(room)), nil)
}

// clearTyping removes a departing member's identity from the room's typing
// set. If identities remain, the updated list is broadcast to the remaining
// members; if the set became empty it is deleted silently. A connection that
// was not typing causes no broadcast at all.
//
// Must be called from the hub's event loop.
func (h *Hub) clearTyping(c *Client, room string) {
	set, ok := h.typing[room]
	if !ok {
		return
	}
	if _, wasTyping := set[c.username]; !wasTyping {
		return
	}

	delete(set, c.username)
	if len(set) == 0 {
		delete(h.typing, room)
		return
	}

	h.broadcastToRoom(room, newTypingEvent(room, h.typingSnapshot(room)), nil)
}

// typingSnapshot returns the identities currently typing in the room. The
// slice is never nil so the event encodes as an empty JSON array.
func (h *Hub) typingSnapshot(room string) []string {
	set := h.typing[room]
	users := make([]string, 0, len(set))
	for username := range set {
		users = append(users, username)
	}
	return users
}
