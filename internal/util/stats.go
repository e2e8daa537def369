package util

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pterm/pterm"
)

// Stats is the process-wide signaling counter set. The server hub feeds it;
// the reporter goroutine prints a line whenever something changed.
var Stats = &stats{}

type stats struct {
	Connections  atomic.Int64 // cumulative signaling connections since process start
	Disconnects  atomic.Int64 // cumulative disconnects since process start
	RoomsCreated atomic.Int64 // rooms created (first member admitted)
	JoinsGranted atomic.Int64 // second members admitted
	JoinsDenied  atomic.Int64 // create-or-join rejected with full
	Relayed      atomic.Int64 // message envelopes relayed between members
}

func (s *stats) AddConnection()  { s.Connections.Add(1) }
func (s *stats) AddDisconnect()  { s.Disconnects.Add(1) }
func (s *stats) AddRoomCreated() { s.RoomsCreated.Add(1) }
func (s *stats) AddJoinGranted() { s.JoinsGranted.Add(1) }
func (s *stats) AddJoinDenied()  { s.JoinsDenied.Add(1) }
func (s *stats) AddRelayed()     { s.Relayed.Add(1) }

// StartStatsReporter launches a goroutine that logs signaling statistics
// every 30 seconds, skipping intervals with no activity. It stops when ctx
// is cancelled.
func StartStatsReporter(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		var prev [6]int64
		for {
			select {
			case <-ticker.C:
				cur := [6]int64{
					Stats.Connections.Load(),
					Stats.Disconnects.Load(),
					Stats.RoomsCreated.Load(),
					Stats.JoinsGranted.Load(),
					Stats.JoinsDenied.Load(),
					Stats.Relayed.Load(),
				}
				if cur != prev {
					pterm.DefaultLogger.Info(formatStats(cur, prev))
					prev = cur
				}

			case <-ctx.Done():
				return
			}
		}
	}()
}

// formatStats renders the per-interval deltas for display in the logger.
func formatStats(cur, prev [6]int64) string {
	return fmt.Sprintf("Conn: %d↑ %d↓ | Rooms: %d new | Joins: %d ok %d full | Relayed: %d",
		cur[0]-prev[0],
		cur[1]-prev[1],
		cur[2]-prev[2],
		cur[3]-prev[3],
		cur[4]-prev[4],
		cur[5]-prev[5],
	)
}
