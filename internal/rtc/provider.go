// Package rtc implements the peer-side WebRTC ports on pion/webrtc. It is
// the only package that touches pion types; the session above it speaks
// the small interfaces from internal/peer.
package rtc

import (
	"fmt"

	"github.com/pion/webrtc/v4"

	"github.com/rondo-dev/rondo/internal/peer"
)

// Provider creates pion-backed peer connections and local media.
type Provider struct {
	stunServers []string
}

// NewProvider creates a provider gathering ICE candidates through the
// given STUN servers.
func NewProvider(stunServers []string) *Provider {
	return &Provider{stunServers: stunServers}
}

// NewPeerConnection creates a PeerConnection configured with the
// provider's STUN servers.
func (p *Provider) NewPeerConnection() (peer.PeerConnection, error) {
	config := webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: p.stunServers},
		},
	}
	pc, err := webrtc.NewPeerConnection(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create peer connection: %w", err)
	}
	return &peerConnection{pc: pc}, nil
}

// peerConnection adapts *webrtc.PeerConnection to the session's port.
type peerConnection struct {
	pc *webrtc.PeerConnection
}

func (c *peerConnection) AttachMedia(stream peer.MediaStream) error {
	ms, ok := stream.(*mediaStream)
	if !ok {
		return fmt.Errorf("unexpected media stream type %T", stream)
	}
	for _, track := range ms.tracks {
		if _, err := c.pc.AddTrack(track); err != nil {
			return fmt.Errorf("failed to add track %q: %w", track.ID(), err)
		}
	}
	return nil
}

func (c *peerConnection) CreateOffer() (peer.SessionDescription, error) {
	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return peer.SessionDescription{}, err
	}
	return peer.SessionDescription{Type: "offer", SDP: offer.SDP}, nil
}

func (c *peerConnection) CreateAnswer() (peer.SessionDescription, error) {
	answer, err := c.pc.CreateAnswer(nil)
	if err != nil {
		return peer.SessionDescription{}, err
	}
	return peer.SessionDescription{Type: "answer", SDP: answer.SDP}, nil
}

func (c *peerConnection) SetLocalDescription(desc peer.SessionDescription) error {
	sd, err := toSessionDescription(desc)
	if err != nil {
		return err
	}
	return c.pc.SetLocalDescription(sd)
}

func (c *peerConnection) SetRemoteDescription(desc peer.SessionDescription) error {
	sd, err := toSessionDescription(desc)
	if err != nil {
		return err
	}
	return c.pc.SetRemoteDescription(sd)
}

func (c *peerConnection) AddICECandidate(cand peer.ICECandidate) error {
	mid := cand.SDPMid
	line := cand.SDPMLineIndex
	return c.pc.AddICECandidate(webrtc.ICECandidateInit{
		Candidate:     cand.Candidate,
		SDPMid:        &mid,
		SDPMLineIndex: &line,
	})
}

func (c *peerConnection) CreateDataChannel(label string) (peer.DataChannel, error) {
	ordered := true
	dc, err := c.pc.CreateDataChannel(label, &webrtc.DataChannelInit{
		Ordered: &ordered,
	})
	if err != nil {
		return nil, err
	}
	return &dataChannel{dc: dc}, nil
}

func (c *peerConnection) OnICECandidate(fn func(cand *peer.ICECandidate)) {
	c.pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			fn(nil) // end of gathering
			return
		}
		init := c.ToJSON()
		cand := peer.ICECandidate{Candidate: init.Candidate}
		if init.SDPMLineIndex != nil {
			cand.SDPMLineIndex = *init.SDPMLineIndex
		}
		if init.SDPMid != nil {
			cand.SDPMid = *init.SDPMid
		}
		fn(&cand)
	})
}

func (c *peerConnection) OnDataChannel(fn func(ch peer.DataChannel)) {
	c.pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		fn(&dataChannel{dc: dc})
	})
}

func (c *peerConnection) Close() error {
	return c.pc.Close()
}

func toSessionDescription(desc peer.SessionDescription) (webrtc.SessionDescription, error) {
	switch desc.Type {
	case "offer":
		return webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: desc.SDP}, nil
	case "answer":
		return webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: desc.SDP}, nil
	default:
		return webrtc.SessionDescription{}, fmt.Errorf("unknown description type %q", desc.Type)
	}
}
