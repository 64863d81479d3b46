package domain

import (
	"encoding/json"
	"time"
)

const (
	// EventChatMessage is the only inbound event type the relay acts on.
	EventChatMessage = "chat_message"
	// EventNewMessage tags the outbound envelope sent to the other clients.
	EventNewMessage = "new_message"
	// MessageTypeText is the fixed type tag carried by every persisted message.
	MessageTypeText = "text"
)

// ParticipantID is a client-supplied user identifier. Clients send it either as
// a JSON string or as a JSON number; both are normalized to the decimal string
// form so that history lookups compare equal regardless of the original type.
// The relay never verifies it against the actual connected client.
type ParticipantID string

func (p *ParticipantID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = ParticipantID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = ParticipantID(n.String())
	return nil
}

// ChatMessage is the immutable persisted record of one relayed text message.
// The timestamp is assigned by the server at receipt time; a timestamp present
// in the client payload is never trusted.
type ChatMessage struct {
	ID         string        `json:"id"`
	Text       string        `json:"text"`
	SenderID   ParticipantID `json:"senderId"`
	ReceiverID ParticipantID `json:"receiverId"`
	Timestamp  time.Time     `json:"timestamp"`
	Type       string        `json:"type"`
}

// InboundEvent is the raw frame a client pushes on its socket.
type InboundEvent struct {
	Type       string        `json:"type" validate:"required"`
	Text       string        `json:"text" validate:"required"`
	SenderID   ParticipantID `json:"senderId" validate:"required"`
	ReceiverID ParticipantID `json:"receiverId" validate:"required"`
}

// Envelope wraps a freshly persisted message for fan-out to the other clients.
type Envelope struct {
	Type    string      `json:"type"`
	Message ChatMessage `json:"message"`
}

func NewEnvelope(msg ChatMessage) Envelope {
	return Envelope{Type: EventNewMessage, Message: msg}
}
