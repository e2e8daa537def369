package peer

import (
	"context"

	"github.com/rondo-dev/rondo/internal/util"
)

const (
	highWaterMark = 256 * 1024 // pause sending when bufferedAmount exceeds this
	lowWaterMark  = 64 * 1024  // resume sending when bufferedAmount drops below this
	chatQueueSize = 64         // outgoing line channel capacity
)

// Chat is a single-writer loop over an open data channel. It serializes
// all sends and applies buffered-amount backpressure, so a slow peer slows
// the sender down instead of ballooning the SCTP buffer.
type Chat struct {
	inbox       chan []byte
	drainSignal chan struct{}
}

// NewChat wires the backpressure callbacks on ch, registers the inbound
// message handler, and starts the send loop. The loop exits when ctx is
// cancelled. ch must already be open.
func NewChat(ctx context.Context, ch DataChannel, onMessage func(text string)) *Chat {
	c := &Chat{
		inbox:       make(chan []byte, chatQueueSize),
		drainSignal: make(chan struct{}, 1),
	}

	ch.SetBufferedAmountLowThreshold(lowWaterMark)
	ch.OnBufferedAmountLow(func() {
		select {
		case c.drainSignal <- struct{}{}:
		default:
		}
	})

	ch.OnMessage(func(data []byte) {
		if onMessage != nil {
			onMessage(string(data))
		}
	})

	go c.loop(ctx, ch)

	return c
}

// Send enqueues a chat line. It blocks while the queue is full and returns
// silently when ctx is already cancelled.
func (c *Chat) Send(ctx context.Context, text string) {
	select {
	case c.inbox <- []byte(text):
	case <-ctx.Done():
	}
}

// loop is the single-writer goroutine.
func (c *Chat) loop(ctx context.Context, ch DataChannel) {
	for {
		select {
		case data := <-c.inbox:
			if ch.BufferedAmount() > highWaterMark {
				select {
				case <-c.drainSignal:
				case <-ctx.Done():
					return
				}
			}

			if err := ch.Send(data); err != nil {
				util.LogError("failed to send chat message: %v", err)
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
