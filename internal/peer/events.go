package peer

import "github.com/rondo-dev/rondo/internal/signal"

// eventKind enumerates everything that can wake the session loop: relayed
// envelopes, local readiness signals, and provider callbacks.
type eventKind int

const (
	evEnvelope eventKind = iota // signaling envelope from the server
	evMediaReady                // local media acquisition succeeded
	evMediaError                // local media acquisition failed
	evLocalCandidate            // local ICE candidate gathered
	evChannelOffered            // remote side opened a data channel
	evChannelOpen               // data channel transitioned to open
	evChannelClosed             // data channel transitioned to closed
	evHangup                    // local teardown request
)

// event is one item on the session inbox. Only the field matching kind is
// populated.
type event struct {
	kind   eventKind
	env    signal.Envelope
	stream MediaStream
	err    error
	cand   ICECandidate
	ch     DataChannel
}
