package signal

import (
	"encoding/json"
	"testing"
)

// TestOfferRoundTrip verifies a wrapped offer survives the envelope
// encode/decode path exactly as sent.
func TestOfferRoundTrip(t *testing.T) {
	env := Offer("v=0 fake sdp").Wrap("r1")
	if env.Event != EventMessage || env.Room != "r1" {
		t.Fatalf("envelope: got %+v", env)
	}

	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	var decoded Envelope
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}

	msg, err := DecodeMessage(decoded.Payload)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if msg.Type != MsgTypeOffer || msg.SDP != "v=0 fake sdp" {
		t.Fatalf("decoded message: got %+v", msg)
	}
}

// TestCandidateZeroLabelSurvives pins the reason Label and ID are
// pointers: sdpMLineIndex 0 and sdpMid "0" are legitimate values and must
// not be dropped by omitempty.
func TestCandidateZeroLabelSurvives(t *testing.T) {
	env := Candidate(0, "0", "candidate:1 1 udp 2122260223 192.0.2.1 54400 typ host").Wrap("r1")

	msg, err := DecodeMessage(env.Payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Label == nil || *msg.Label != 0 {
		t.Fatalf("label: got %v, want pointer to 0", msg.Label)
	}
	if msg.ID == nil || *msg.ID != "0" {
		t.Fatalf("id: got %v, want pointer to \"0\"", msg.ID)
	}
	if msg.Candidate == "" {
		t.Fatal("candidate string was dropped")
	}
}

// TestDecodeRejectsUnknownType verifies forward-compat hygiene: payloads
// with unrecognized types are an error, not a zero Message.
func TestDecodeRejectsUnknownType(t *testing.T) {
	if _, err := DecodeMessage(json.RawMessage(`{"type":"renegotiate"}`)); err == nil {
		t.Fatal("unknown type was accepted")
	}
	if _, err := DecodeMessage(json.RawMessage(`{not json`)); err == nil {
		t.Fatal("malformed payload was accepted")
	}
}

// TestByeHasNoBody verifies the hangup payload stays minimal on the wire.
func TestByeHasNoBody(t *testing.T) {
	env := Bye().Wrap("r1")
	if string(env.Payload) != `{"type":"bye"}` {
		t.Fatalf("bye payload: got %s", env.Payload)
	}
}
