// Package server implements event fan-out: delivering one payload to every
// member of a room and computing presence snapshots on demand.
package server

// broadcastToRoom delivers payload to every current member of the room except
// exclude (if non-nil). Delivery is fire-and-forget: a closed or slow peer is
// skipped without affecting the others, and failed peers are not removed here.
// A room with no directory entry broadcasts to nobody.
//
// Must be called from the hub's event loop, which owns the member sets.
func (h *Hub) broadcastToRoom(room string, payload []byte, exclude *Client) {
	for member := range h.rooms[room] {
		if member == exclude {
			continue
		}
		h.safeSend(member, payload)
	}
}

// broadcastPresence recomputes the room's presence snapshot and sends it to
// every member, with no exclusion. Skipped when the room no longer exists,
// which is exactly the case after the last member leaves.
//
// Must be called from the hub's event loop.
func (h *Hub) broadcastPresence(room string) {
	if _, ok := h.rooms[room]; !ok {
		return
	}
	h.broadcastToRoom(room, newPresenceEvent(room, h.presenceSnapshot(room)), nil)
}

// presenceSnapshot lists the display identities of the room's current members,
// filtering out connections that never identified themselves. Recomputed on
// every call, never cached. The slice is never nil so the event encodes as an
// empty JSON array.
func (h *Hub) presenceSnapshot(room string) []string {
	members := h.rooms[room]
	users := make([]string, 0, len(members))
	for member := range members {
		if member.username == "" {
			continue
		}
		users = append(users, member.username)
	}
	return users
}
