package peer

import (
	"context"
	"fmt"

	"github.com/rondo-dev/rondo/internal/signal"
	"github.com/rondo-dev/rondo/internal/util"
)

// State is the negotiation lifecycle of one rendezvous attempt.
type State int

const (
	StateIdle State = iota
	StateWaitingForPeer
	StateNegotiating
	StateConnected
	StateClosed
)

// Role within the room. The creator initiates the offer.
type Role int

const (
	RoleNone Role = iota
	RoleInitiator
	RoleJoiner
)

// ChannelState tracks the data-channel lifecycle.
type ChannelState int

const (
	ChannelUnopened ChannelState = iota
	ChannelOpen
	ChannelClosed
)

// EnvelopeSender delivers outgoing envelopes to the rendezvous server.
type EnvelopeSender interface {
	Send(env signal.Envelope) error
}

// Hooks are the session's notifications to the application. All hooks are
// invoked from the session loop; keep them short or hand off.
type Hooks struct {
	OnConnected func(ch DataChannel)   // data channel is open
	OnClosed    func()                 // session reached Closed
	OnFull      func(room string)      // room was full; attempt is over
	OnError     func(err error)        // media/description failure, session stalls
}

// Session is the client-side negotiation state machine for one room
// attempt. A single loop goroutine owns every field below; external
// callbacks and the public API only post events into the inbox, so the
// guarded negotiation start is evaluated serially and fires exactly once
// no matter in which order media readiness and peer presence arrive.
type Session struct {
	room     string
	out      EnvelopeSender
	provider Provider
	hooks    Hooks

	inbox chan event
	done  chan struct{}

	// Owned by the loop.
	state        State
	role         Role
	mediaReady   bool
	peerPresent  bool
	started      bool
	channelState ChannelState

	stream  MediaStream
	pc      PeerConnection
	channel DataChannel

	// Early-arrival buffers: an offer that beat our own readiness check,
	// and candidates that beat the remote description.
	pendingOffer      *signal.Message
	pendingCandidates []ICECandidate
	remoteApplied     bool
}

// NewSession creates a session for the named room. Call Start to begin.
func NewSession(room string, out EnvelopeSender, provider Provider, hooks Hooks) *Session {
	return &Session{
		room:     room,
		out:      out,
		provider: provider,
		hooks:    hooks,
		inbox:    make(chan event, 32),
		done:     make(chan struct{}),
	}
}

// Start launches the session loop, kicks off media acquisition, and sends
// the create-or-join request. The session tears down when ctx is
// cancelled.
func (s *Session) Start(ctx context.Context) error {
	go s.run(ctx)

	go func() {
		stream, err := s.provider.AcquireLocalMedia(ctx)
		if err != nil {
			s.post(event{kind: evMediaError, err: err})
			return
		}
		s.post(event{kind: evMediaReady, stream: stream})
	}()

	if err := s.out.Send(signal.CreateOrJoin(s.room)); err != nil {
		return fmt.Errorf("failed to send create-or-join: %w", err)
	}
	return nil
}

// Handle feeds a relayed envelope into the session.
func (s *Session) Handle(env signal.Envelope) {
	s.post(event{kind: evEnvelope, env: env})
}

// Hangup requests local teardown. Safe to call repeatedly; a session that
// is already closed ignores it.
func (s *Session) Hangup() {
	s.post(event{kind: evHangup})
}

// Done is closed once the session reaches Closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) post(ev event) {
	select {
	case s.inbox <- ev:
	case <-s.done:
		// The loop is gone; release media that arrived too late.
		if ev.kind == evMediaReady && ev.stream != nil {
			ev.stream.Close()
		}
	}
}

func (s *Session) run(ctx context.Context) {
	for {
		select {
		case ev := <-s.inbox:
			s.handle(ev)
		case <-ctx.Done():
			s.handle(event{kind: evHangup})
		}
		if s.state == StateClosed {
			s.drainInbox()
			return
		}
	}
}

// drainInbox releases resources queued behind the closing event, such as
// a media stream that arrived while teardown was already underway.
func (s *Session) drainInbox() {
	for {
		select {
		case ev := <-s.inbox:
			if ev.kind == evMediaReady && ev.stream != nil {
				ev.stream.Close()
			}
		default:
			return
		}
	}
}

// handle is the single serialized entry point for every state mutation.
func (s *Session) handle(ev event) {
	if s.state == StateClosed {
		if ev.kind == evMediaReady && ev.stream != nil {
			ev.stream.Close()
		}
		return
	}

	switch ev.kind {
	case evEnvelope:
		s.handleEnvelope(ev.env)

	case evMediaReady:
		s.stream = ev.stream
		s.mediaReady = true
		s.send(signal.GotMedia().Wrap(s.room))
		s.checkAndStart()

	case evMediaError:
		s.fail(fmt.Errorf("media acquisition failed: %w", ev.err))

	case evLocalCandidate:
		s.send(signal.Candidate(ev.cand.SDPMLineIndex, ev.cand.SDPMid, ev.cand.Candidate).Wrap(s.room))

	case evChannelOffered:
		s.channel = ev.ch
		util.LogDebug("data channel %q offered by peer", ev.ch.Label())

	case evChannelOpen:
		s.channelState = ChannelOpen
		s.state = StateConnected
		util.LogInfo("data channel open")
		if s.hooks.OnConnected != nil {
			s.hooks.OnConnected(s.channel)
		}

	case evChannelClosed:
		s.channelState = ChannelClosed
		util.LogInfo("data channel closed")

	case evHangup:
		s.teardown(true)
	}
}

func (s *Session) handleEnvelope(env signal.Envelope) {
	switch env.Event {
	case signal.EventCreated:
		s.role = RoleInitiator
		s.state = StateWaitingForPeer
		util.LogInfo("created room %q, waiting for a peer", env.Room)

	case signal.EventJoined:
		if s.role == RoleNone {
			s.role = RoleJoiner
		}
		s.peerPresent = true
		s.state = StateWaitingForPeer
		util.LogInfo("joined room %q", env.Room)
		s.checkAndStart()

	case signal.EventJoin:
		s.peerPresent = true
		util.LogInfo("a peer joined room %q", env.Room)
		s.checkAndStart()

	case signal.EventFull:
		util.LogWarning("room %q is full", env.Room)
		if s.hooks.OnFull != nil {
			s.hooks.OnFull(env.Room)
		}
		s.teardown(false)

	case signal.EventMessage:
		msg, err := signal.DecodeMessage(env.Payload)
		if err != nil {
			util.LogWarning("dropping malformed message: %v", err)
			return
		}
		s.handleMessage(msg)

	default:
		util.LogDebug("ignoring %q envelope", env.Event)
	}
}

func (s *Session) handleMessage(msg signal.Message) {
	switch msg.Type {
	case signal.MsgTypeGotMedia:
		// Readiness nudge from the peer; nothing to record, but the
		// guarded transition may be due.
		s.checkAndStart()

	case signal.MsgTypeOffer:
		if !s.started && s.role != RoleInitiator {
			s.checkAndStart()
		}
		if !s.started {
			// Our own media is still pending; hold the offer and apply
			// it the moment the guarded transition fires.
			m := msg
			s.pendingOffer = &m
			util.LogDebug("buffered offer until local readiness")
			return
		}
		s.applyOffer(msg)

	case signal.MsgTypeAnswer:
		if !s.started {
			util.LogWarning("dropping answer before negotiation started")
			return
		}
		if err := s.pc.SetRemoteDescription(SessionDescription{Type: "answer", SDP: msg.SDP}); err != nil {
			s.fail(fmt.Errorf("failed to apply answer: %w", err))
			return
		}
		s.remoteApplied = true
		s.flushCandidates()

	case signal.MsgTypeCandidate:
		cand := ICECandidate{Candidate: msg.Candidate}
		if msg.Label != nil {
			cand.SDPMLineIndex = *msg.Label
		}
		if msg.ID != nil {
			cand.SDPMid = *msg.ID
		}
		if !s.started || !s.remoteApplied {
			// A candidate must never be applied before the remote
			// description; buffer and flush later.
			s.pendingCandidates = append(s.pendingCandidates, cand)
			return
		}
		if err := s.pc.AddICECandidate(cand); err != nil {
			util.LogWarning("failed to add ICE candidate: %v", err)
		}

	case signal.MsgTypeBye:
		if !s.started {
			return
		}
		util.LogInfo("peer hung up")
		s.role = RoleNone
		s.teardown(false)
	}
}

// checkAndStart is the guarded transition: it fires exactly once, on
// whichever update makes both readiness flags true, and moves the session
// to Negotiating.
func (s *Session) checkAndStart() {
	if s.started || !s.mediaReady || !s.peerPresent {
		return
	}

	pc, err := s.provider.NewPeerConnection()
	if err != nil {
		s.fail(fmt.Errorf("failed to create peer connection: %w", err))
		return
	}
	if err := pc.AttachMedia(s.stream); err != nil {
		pc.Close()
		s.fail(fmt.Errorf("failed to attach local media: %w", err))
		return
	}

	pc.OnICECandidate(func(c *ICECandidate) {
		if c != nil {
			s.post(event{kind: evLocalCandidate, cand: *c})
		}
	})
	pc.OnDataChannel(func(ch DataChannel) {
		s.watchChannel(ch)
		s.post(event{kind: evChannelOffered, ch: ch})
	})

	s.pc = pc
	s.started = true
	s.state = StateNegotiating
	util.LogInfo("negotiation started (role=%s)", s.roleString())

	if s.role == RoleInitiator {
		s.openChannelAndOffer()
	} else if s.pendingOffer != nil {
		msg := *s.pendingOffer
		s.pendingOffer = nil
		s.applyOffer(msg)
	}
}

// openChannelAndOffer is the initiator half of negotiation: create the
// chat channel, then generate and send the offer.
func (s *Session) openChannelAndOffer() {
	ch, err := s.pc.CreateDataChannel("chat")
	if err != nil {
		s.fail(fmt.Errorf("failed to create data channel: %w", err))
		return
	}
	s.watchChannel(ch)
	s.channel = ch

	offer, err := s.pc.CreateOffer()
	if err != nil {
		s.fail(fmt.Errorf("failed to create offer: %w", err))
		return
	}
	if err := s.pc.SetLocalDescription(offer); err != nil {
		s.fail(fmt.Errorf("failed to set local description: %w", err))
		return
	}
	s.send(signal.Offer(offer.SDP).Wrap(s.room))
}

// applyOffer is the responder half: apply the remote offer, flush any
// buffered candidates, then answer.
func (s *Session) applyOffer(msg signal.Message) {
	if err := s.pc.SetRemoteDescription(SessionDescription{Type: "offer", SDP: msg.SDP}); err != nil {
		s.fail(fmt.Errorf("failed to apply offer: %w", err))
		return
	}
	s.remoteApplied = true
	s.flushCandidates()

	answer, err := s.pc.CreateAnswer()
	if err != nil {
		s.fail(fmt.Errorf("failed to create answer: %w", err))
		return
	}
	if err := s.pc.SetLocalDescription(answer); err != nil {
		s.fail(fmt.Errorf("failed to set local description: %w", err))
		return
	}
	s.send(signal.Answer(answer.SDP).Wrap(s.room))
}

// flushCandidates applies buffered candidates in arrival order.
func (s *Session) flushCandidates() {
	for _, cand := range s.pendingCandidates {
		if err := s.pc.AddICECandidate(cand); err != nil {
			util.LogWarning("failed to add buffered ICE candidate: %v", err)
		}
	}
	s.pendingCandidates = nil
}

// watchChannel forwards channel lifecycle callbacks into the loop. It may
// run on a provider goroutine; the closures only post events.
func (s *Session) watchChannel(ch DataChannel) {
	ch.OnOpen(func() {
		s.post(event{kind: evChannelOpen})
	})
	ch.OnClose(func() {
		s.post(event{kind: evChannelClosed})
	})
}

// teardown releases negotiation state symmetrically for local hangups
// (sendBye) and remote ones. Already-released resources are skipped, so
// repeated teardowns are no-ops.
func (s *Session) teardown(sendBye bool) {
	s.started = false
	if s.channel != nil {
		s.channel.Close()
		s.channel = nil
		s.channelState = ChannelClosed
	}
	if s.pc != nil {
		s.pc.Close()
		s.pc = nil
	}
	if s.stream != nil {
		s.stream.Close()
		s.stream = nil
	}
	s.pendingOffer = nil
	s.pendingCandidates = nil
	s.remoteApplied = false

	if sendBye {
		s.send(signal.Bye().Wrap(s.room))
	}

	s.state = StateClosed
	close(s.done)
	if s.hooks.OnClosed != nil {
		s.hooks.OnClosed()
	}
}

// fail reports an unrecoverable local error. Per protocol there is no
// error message to the peer; the session stalls until someone hangs up.
func (s *Session) fail(err error) {
	util.LogError("%v", err)
	if s.hooks.OnError != nil {
		s.hooks.OnError(err)
	}
}

func (s *Session) send(env signal.Envelope) {
	if err := s.out.Send(env); err != nil {
		util.LogWarning("failed to send %q envelope: %v", env.Event, err)
	}
}

func (s *Session) roleString() string {
	switch s.role {
	case RoleInitiator:
		return "initiator"
	case RoleJoiner:
		return "joiner"
	default:
		return "none"
	}
}
