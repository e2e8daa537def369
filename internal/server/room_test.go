package server

import (
	"sync"
	"testing"
)

// TestCreateOrJoinSequence verifies the canonical two-party rendezvous:
// first request creates, second joins, third is rejected.
func TestCreateOrJoinSequence(t *testing.T) {
	rr := NewRoomRegistry()

	if ev := rr.CreateOrJoin("r1", "a"); ev != RoomCreated {
		t.Fatalf("first request: got %v, want RoomCreated", ev)
	}
	if ev := rr.CreateOrJoin("r1", "b"); ev != RoomJoined {
		t.Fatalf("second request: got %v, want RoomJoined", ev)
	}
	if ev := rr.CreateOrJoin("r1", "c"); ev != RoomFull {
		t.Fatalf("third request: got %v, want RoomFull", ev)
	}
	if n := rr.MemberCount("r1"); n != 2 {
		t.Fatalf("member count after full rejection: got %d, want 2", n)
	}
}

// TestCreateOrJoinIsIdempotentPerConnection verifies that re-requesting a
// room reports the held role without mutating membership.
func TestCreateOrJoinIsIdempotentPerConnection(t *testing.T) {
	rr := NewRoomRegistry()

	rr.CreateOrJoin("r1", "a")
	rr.CreateOrJoin("r1", "b")

	if ev := rr.CreateOrJoin("r1", "a"); ev != RoomCreated {
		t.Errorf("creator re-request: got %v, want RoomCreated", ev)
	}
	if ev := rr.CreateOrJoin("r1", "b"); ev != RoomJoined {
		t.Errorf("joiner re-request: got %v, want RoomJoined", ev)
	}
	if n := rr.MemberCount("r1"); n != 2 {
		t.Errorf("member count: got %d, want 2", n)
	}
}

// TestLeaveReclaimsSlot verifies that departures free the slot, report the
// remaining member, and delete empty rooms.
func TestLeaveReclaimsSlot(t *testing.T) {
	rr := NewRoomRegistry()
	rr.CreateOrJoin("r1", "a")
	rr.CreateOrJoin("r1", "b")

	other, ok := rr.Leave("r1", "a")
	if !ok || other != "b" {
		t.Fatalf("Leave(a): got (%q, %v), want (\"b\", true)", other, ok)
	}

	// The freed slot admits a new joiner.
	if ev := rr.CreateOrJoin("r1", "c"); ev != RoomJoined {
		t.Fatalf("rejoin after leave: got %v, want RoomJoined", ev)
	}

	rr.Leave("r1", "b")
	if _, ok := rr.Leave("r1", "c"); ok {
		t.Fatal("last leave reported a remaining member")
	}

	// Room was deleted; the name is reusable from scratch.
	if ev := rr.CreateOrJoin("r1", "d"); ev != RoomCreated {
		t.Fatalf("recreate after empty: got %v, want RoomCreated", ev)
	}
}

// TestOtherMember covers the relay lookup including the alone case.
func TestOtherMember(t *testing.T) {
	rr := NewRoomRegistry()
	rr.CreateOrJoin("r1", "a")

	if _, ok := rr.OtherMember("r1", "a"); ok {
		t.Fatal("OtherMember reported a peer for a lone member")
	}

	rr.CreateOrJoin("r1", "b")
	if other, ok := rr.OtherMember("r1", "a"); !ok || other != "b" {
		t.Fatalf("OtherMember(a): got (%q, %v), want (\"b\", true)", other, ok)
	}
	if other, ok := rr.OtherMember("r1", "b"); !ok || other != "a" {
		t.Fatalf("OtherMember(b): got (%q, %v), want (\"a\", true)", other, ok)
	}
	if _, ok := rr.OtherMember("r1", "z"); ok {
		t.Fatal("OtherMember reported a peer for a non-member")
	}
}

// TestConcurrentJoinNeverExceedsCapacity hammers one room from many
// goroutines and checks that exactly one creator and one joiner are
// admitted, everyone else rejected.
func TestConcurrentJoinNeverExceedsCapacity(t *testing.T) {
	const attempts = 32
	rr := NewRoomRegistry()

	results := make([]RoomEvent, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = rr.CreateOrJoin("contended", string(rune('a'+i)))
		}(i)
	}
	wg.Wait()

	var created, joined, full int
	for _, ev := range results {
		switch ev {
		case RoomCreated:
			created++
		case RoomJoined:
			joined++
		case RoomFull:
			full++
		}
	}

	if created != 1 || joined != 1 || full != attempts-2 {
		t.Fatalf("got created=%d joined=%d full=%d, want 1/1/%d", created, joined, full, attempts-2)
	}
	if n := rr.MemberCount("contended"); n != 2 {
		t.Fatalf("member count: got %d, want 2", n)
	}
}
