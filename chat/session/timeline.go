package session

import (
	"sync"
	"time"

	"github.com/hayoon/aptchat/chat/domain"
)

const transientWindow = 400 * time.Millisecond

// Timeline is the message sequence of the active room: replaced wholesale
// on room switch, appended to by live frames. Deduplication is a
// projection computed at read time, never stored, because a live frame can
// retroactively match an earlier entry's effective key.
type Timeline struct {
	mu       sync.Mutex
	msgs     []domain.Message
	epoch    int // bumped on Reset; orphans pending transient clears
	window   time.Duration
	onChange func()
}

func NewTimeline(onChange func()) *Timeline {
	return &Timeline{window: transientWindow, onChange: onChange}
}

// Reset replaces the timeline wholesale. Passing nil clears it.
func (t *Timeline) Reset(msgs []domain.Message) {
	t.mu.Lock()
	t.epoch++
	t.msgs = append([]domain.Message(nil), msgs...)
	t.mu.Unlock()
	t.notify()
}

// Append adds one live message, marked transient for the animation window.
// The later clear is keyed by effective key, not position, so mutations
// during the window never flip the wrong entry.
func (t *Timeline) Append(msg domain.Message) {
	msg.Transient = true

	t.mu.Lock()
	t.msgs = append(t.msgs, msg)
	epoch := t.epoch
	key := msg.EffectiveKey()
	window := t.window
	t.mu.Unlock()
	t.notify()

	time.AfterFunc(window, func() { t.clearTransient(key, epoch) })
}

func (t *Timeline) clearTransient(key string, epoch int) {
	t.mu.Lock()
	if epoch != t.epoch {
		t.mu.Unlock()
		return
	}
	changed := false
	for i := range t.msgs {
		if t.msgs[i].Transient && t.msgs[i].EffectiveKey() == key {
			t.msgs[i].Transient = false
			changed = true
		}
	}
	t.mu.Unlock()
	if changed {
		t.notify()
	}
}

// Snapshot is the rendered view: one entry per effective key, in order of
// first occurrence, carrying the content of the last occurrence.
func (t *Timeline) Snapshot() []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.Message, 0, len(t.msgs))
	pos := make(map[string]int, len(t.msgs))
	for _, msg := range t.msgs {
		key := msg.EffectiveKey()
		if i, seen := pos[key]; seen {
			out[i] = msg
			continue
		}
		pos[key] = len(out)
		out = append(out, msg)
	}
	return out
}

func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.msgs)
}

func (t *Timeline) notify() {
	if t.onChange != nil {
		t.onChange()
	}
}
