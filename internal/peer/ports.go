// Package peer implements the client side of the rendezvous protocol: the
// signaling connection, the negotiation state machine that drives an
// external WebRTC provider through offer/answer/candidate exchange, and
// the chat loop over the resulting data channel.
package peer

import "context"

// SessionDescription is an opaque SDP blob plus its type ("offer" or
// "answer"). The session never inspects the SDP itself.
type SessionDescription struct {
	Type string
	SDP  string
}

// ICECandidate is a connectivity option relayed verbatim between peers.
type ICECandidate struct {
	SDPMLineIndex uint16
	SDPMid        string
	Candidate     string
}

// MediaStream is an opaque handle to acquired local media.
type MediaStream interface {
	Close() error
}

// DataChannel is the bidirectional application-data transport established
// once negotiation completes.
type DataChannel interface {
	Label() string
	Send(data []byte) error
	Close() error

	BufferedAmount() uint64
	SetBufferedAmountLowThreshold(n uint64)
	OnBufferedAmountLow(fn func())

	OnOpen(fn func())
	OnClose(fn func())
	OnMessage(fn func(data []byte))
}

// PeerConnection is the slice of the external WebRTC provider the session
// needs. Callbacks may fire on provider goroutines; implementations of the
// session post them back into its event loop.
type PeerConnection interface {
	AttachMedia(stream MediaStream) error

	CreateOffer() (SessionDescription, error)
	CreateAnswer() (SessionDescription, error)
	SetLocalDescription(desc SessionDescription) error
	SetRemoteDescription(desc SessionDescription) error
	AddICECandidate(c ICECandidate) error

	CreateDataChannel(label string) (DataChannel, error)

	// OnICECandidate registers a callback invoked for every local ICE
	// candidate gathered. A nil candidate signals the end of gathering.
	OnICECandidate(fn func(c *ICECandidate))

	// OnDataChannel registers a callback invoked when the remote side
	// opens a channel (joiner path).
	OnDataChannel(fn func(ch DataChannel))

	Close() error
}

// Provider creates the external collaborators the session drives.
type Provider interface {
	AcquireLocalMedia(ctx context.Context) (MediaStream, error)
	NewPeerConnection() (PeerConnection, error)
}
