// Package server defines the wire protocol shared by clients and the hub: a
// single JSON envelope whose "type" field selects the variant.
package server

import (
	"encoding/json"
	"log"
)

// MessageType tags a wire envelope with its variant.
type MessageType string

// Inbound message types accepted by the router.
const (
	TypeJoin            MessageType = "join"
	TypeLeave           MessageType = "leave"
	TypeMessage         MessageType = "message"
	TypeReaction        MessageType = "reaction"
	TypePresenceRequest MessageType = "presence_request"
	TypeTyping          MessageType = "typing"
)

// Outbound-only event types emitted by the hub.
const (
	TypeError      MessageType = "error"
	TypeSystem     MessageType = "system"
	TypeUserJoined MessageType = "user_joined"
	TypeUserLeft   MessageType = "user_left"
	TypePresence   MessageType = "presence"
)

// Envelope is the superset of all inbound message fields. Each handler
// validates the subset it requires; unused fields stay at their zero value.
type Envelope struct {
	Type      MessageType `json:"type"`
	Room      string      `json:"room,omitempty"`
	Sender    string      `json:"sender,omitempty"`
	Content   string      `json:"content,omitempty"`
	Target    string      `json:"target,omitempty"`
	Emoji     string      `json:"emoji,omitempty"`
	Timestamp int64       `json:"timestamp,omitempty"`
	Reply     string      `json:"reply,omitempty"`
	Typing    bool        `json:"typing,omitempty"`
}

type errorEvent struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

type systemEvent struct {
	Type    MessageType `json:"type"`
	Content string      `json:"content"`
}

type memberEvent struct {
	Type   MessageType `json:"type"`
	Room   string      `json:"room"`
	Sender string      `json:"sender"`
}

type presenceEvent struct {
	Type  MessageType `json:"type"`
	Room  string      `json:"room"`
	Users []string    `json:"users"`
}

type typingEvent struct {
	Type        MessageType `json:"type"`
	Room        string      `json:"room"`
	TypingUsers []string    `json:"typingUsers"`
}

type chatEvent struct {
	Type      MessageType `json:"type"`
	Room      string      `json:"room"`
	Sender    string      `json:"sender"`
	Content   string      `json:"content"`
	Timestamp int64       `json:"timestamp"`
	Reply     string      `json:"reply"`
}

type reactionEvent struct {
	Type      MessageType `json:"type"`
	Room      string      `json:"room"`
	Sender    string      `json:"sender"`
	Target    string      `json:"target"`
	Emoji     string      `json:"emoji"`
	Timestamp int64       `json:"timestamp"`
}

// decodeMessage decodes an inbound wire payload into the envelope. A failure
// means the payload was not valid JSON; the router reports it to the sender
// and drops the frame.
func decodeMessage(raw []byte, msg *Envelope) error {
	return json.Unmarshal(raw, msg)
}

// encodeEvent marshals an outbound event. The event structs contain only
// strings, slices, and integers, so a failure here indicates a programming
// error; it is logged and yields nil, which safeSend treats as a skip.
func encodeEvent(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error encoding outbound event %T: %v", v, err)
		return nil
	}
	return data
}

func newErrorEvent(message string) []byte {
	return encodeEvent(errorEvent{Type: TypeError, Message: message})
}

func newSystemEvent(content string) []byte {
	return encodeEvent(systemEvent{Type: TypeSystem, Content: content})
}

func newUserJoinedEvent(room, sender string) []byte {
	return encodeEvent(memberEvent{Type: TypeUserJoined, Room: room, Sender: sender})
}

func newUserLeftEvent(room, sender string) []byte {
	return encodeEvent(memberEvent{Type: TypeUserLeft, Room: room, Sender: sender})
}

func newPresenceEvent(room string, users []string) []byte {
	return encodeEvent(presenceEvent{Type: TypePresence, Room: room, Users: users})
}

func newTypingEvent(room string, users []string) []byte {
	return encodeEvent(typingEvent{Type: TypeTyping, Room: room, TypingUsers: users})
}

func newChatEvent(room, sender, content string, timestamp int64, reply string) []byte {
	return encodeEvent(chatEvent{
		Type:      TypeMessage,
		Room:      room,
		Sender:    sender,
		Content:   content,
		Timestamp: timestamp,
		Reply:     reply,
	})
}

func newReactionEvent(room, sender, target, emoji string, timestamp int64) []byte {
	return encodeEvent(reactionEvent{
		Type:      TypeReaction,
		Room:      room,
		Sender:    sender,
		Target:    target,
		Emoji:     emoji,
		Timestamp: timestamp,
	})
}
