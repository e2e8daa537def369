package signal

import (
	"encoding/json"
	"fmt"
)

// MessageType identifies the kind of relayed signaling message.
type MessageType string

const (
	MsgTypeGotMedia  MessageType = "got user media"
	MsgTypeOffer     MessageType = "offer"
	MsgTypeAnswer    MessageType = "answer"
	MsgTypeCandidate MessageType = "candidate"
	MsgTypeBye       MessageType = "bye"
)

// Message is the payload relayed between the two members of a room.
// It is immutable once sent. Label and ID are pointers so a zero
// sdpMLineIndex survives the omitempty round trip.
type Message struct {
	Type      MessageType `json:"type"`
	SDP       string      `json:"sdp,omitempty"`
	Label     *uint16     `json:"label,omitempty"` // sdpMLineIndex
	ID        *string     `json:"id,omitempty"`    // sdpMid
	Candidate string      `json:"candidate,omitempty"`
}

// GotMedia announces that local media has been acquired.
func GotMedia() Message {
	return Message{Type: MsgTypeGotMedia}
}

// Offer wraps an SDP offer.
func Offer(sdp string) Message {
	return Message{Type: MsgTypeOffer, SDP: sdp}
}

// Answer wraps an SDP answer.
func Answer(sdp string) Message {
	return Message{Type: MsgTypeAnswer, SDP: sdp}
}

// Candidate wraps an ICE candidate discovered by the local peer connection.
func Candidate(label uint16, id, candidate string) Message {
	return Message{Type: MsgTypeCandidate, Label: &label, ID: &id, Candidate: candidate}
}

// Bye is the explicit hangup notification.
func Bye() Message {
	return Message{Type: MsgTypeBye}
}

// Wrap encodes the message into an outgoing envelope for the given room.
func (m Message) Wrap(room string) Envelope {
	// Marshal cannot fail for this struct; keep the API channel-friendly.
	payload, _ := json.Marshal(m)
	return Envelope{Event: EventMessage, Room: room, Payload: payload}
}

// DecodeMessage parses a relayed message payload.
func DecodeMessage(raw json.RawMessage) (Message, error) {
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return Message{}, fmt.Errorf("failed to decode signaling message: %w", err)
	}
	switch m.Type {
	case MsgTypeGotMedia, MsgTypeOffer, MsgTypeAnswer, MsgTypeCandidate, MsgTypeBye:
		return m, nil
	default:
		return Message{}, fmt.Errorf("unknown signaling message type: %q", m.Type)
	}
}
