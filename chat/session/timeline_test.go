package session

import (
	"testing"
	"time"

	"github.com/hayoon/aptchat/chat/domain"
)

func TestTimeline_Snapshot_Dedup(t *testing.T) {
	tl := NewTimeline(nil)
	tl.window = time.Millisecond

	tl.Reset([]domain.Message{
		{ID: 1, SenderID: 7, Body: "first"},
		{ClientID: "c1", SenderID: 7, Body: "pending"},
		{ID: 2, SenderID: 8, Body: "second"},
	})
	// Echo that retroactively matches the optimistic entry's client id.
	tl.Append(domain.Message{ClientID: "c1", SenderID: 7, Body: "pending (confirmed)"})
	// Straight duplicate by server id.
	tl.Append(domain.Message{ID: 2, SenderID: 8, Body: "second edited"})

	snap := tl.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("Snapshot() len = %d, want 3", len(snap))
	}
	if snap[0].ID != 1 {
		t.Errorf("snap[0].ID = %d, want 1", snap[0].ID)
	}
	if snap[1].Body != "pending (confirmed)" {
		t.Errorf("snap[1].Body = %q, want last write", snap[1].Body)
	}
	if snap[2].Body != "second edited" {
		t.Errorf("snap[2].Body = %q, want last write", snap[2].Body)
	}
}

func TestTimeline_Snapshot_FallbackKeyOrder(t *testing.T) {
	tl := NewTimeline(nil)
	tl.window = time.Millisecond

	for _, body := range []string{"a", "b", "a"} {
		tl.Append(domain.Message{SenderID: 1, Body: body, DisplayTime: "10:00"})
	}

	snap := tl.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot() len = %d, want 2", len(snap))
	}
	if snap[0].Body != "a" || snap[1].Body != "b" {
		t.Errorf("Snapshot() order = [%s %s], want first-occurrence order", snap[0].Body, snap[1].Body)
	}
}

func TestTimeline_TransientFlips(t *testing.T) {
	tl := NewTimeline(nil)
	tl.window = 10 * time.Millisecond

	tl.Append(domain.Message{ID: 1, SenderID: 7, Body: "hi"})

	if snap := tl.Snapshot(); !snap[0].Transient {
		t.Fatal("message not transient right after arrival")
	}

	time.Sleep(50 * time.Millisecond)

	if snap := tl.Snapshot(); snap[0].Transient {
		t.Error("message still transient after the window")
	}
}

func TestTimeline_ResetOrphansPendingClears(t *testing.T) {
	tl := NewTimeline(nil)
	tl.window = 10 * time.Millisecond

	tl.Append(domain.Message{ID: 1, SenderID: 7, Body: "old room"})
	tl.Reset([]domain.Message{{ID: 1, SenderID: 7, Body: "new room", Transient: true}})

	time.Sleep(50 * time.Millisecond)

	// The pending clear belonged to the previous epoch and must not touch
	// the entry that happens to share its key.
	if snap := tl.Snapshot(); !snap[0].Transient {
		t.Error("clear from a previous epoch flipped the new entry")
	}
}

func TestTimeline_NotifiesOnChange(t *testing.T) {
	var calls int
	tl := NewTimeline(func() { calls++ })
	tl.window = time.Minute // keep the async clear out of the count

	tl.Reset(nil)
	tl.Append(domain.Message{ID: 1, SenderID: 7, Body: "hi"})

	if calls != 2 {
		t.Errorf("onChange calls = %d, want 2", calls)
	}
}
