package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hayoon/aptchat/chat/metrics"
)

// Registry tracks live subscriptions by logical channel key: one
// room-scoped entry at most, plus the global updates entry. Every
// subscribe it performs stays recorded until explicitly torn down.
type Registry struct {
	mu   sync.Mutex
	tr   Transport
	subs map[string]string // channel key -> transport subscription id
}

func NewRegistry(tr Transport) *Registry {
	return &Registry{tr: tr, subs: make(map[string]string)}
}

// ReplaceRoomSubscription unsubscribes whatever room channel is held, then
// subscribes the new one. The teardown completes before the new subscribe
// so a frame from the old room can never land after the switch.
func (r *Registry) ReplaceRoomSubscription(roomID int, handler func(destination string, body []byte)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dropRoomLocked()

	id, err := r.tr.Subscribe(RoomTopic(roomID), handler)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", RoomTopic(roomID), err)
	}
	r.subs[RoomKey(roomID)] = id
	metrics.ActiveSubscriptions.Set(float64(len(r.subs)))
	return nil
}

// EnsureUpdatesSubscription subscribes the global room-list channel once
// per connection lifetime; later calls are no-ops.
func (r *Registry) EnsureUpdatesSubscription(handler func(destination string, body []byte)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[UpdatesKey]; ok {
		return nil
	}
	id, err := r.tr.Subscribe(UpdatesTopic, handler)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", UpdatesTopic, err)
	}
	r.subs[UpdatesKey] = id
	metrics.ActiveSubscriptions.Set(float64(len(r.subs)))
	return nil
}

// DropRoomSubscription tears down the room-scoped entry, if any, keeping
// the updates subscription alive.
func (r *Registry) DropRoomSubscription() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropRoomLocked()
}

func (r *Registry) dropRoomLocked() {
	for key, id := range r.subs {
		if !strings.HasPrefix(key, "room-") {
			continue
		}
		if err := r.tr.Unsubscribe(id); err != nil {
			log.Warn().Err(err).Str("channel", key).Msg("unsubscribe failed")
		}
		delete(r.subs, key)
	}
	metrics.ActiveSubscriptions.Set(float64(len(r.subs)))
}

// Clear unsubscribes everything; called on disconnect.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, id := range r.subs {
		if err := r.tr.Unsubscribe(id); err != nil {
			log.Warn().Err(err).Str("channel", key).Msg("unsubscribe failed")
		}
		delete(r.subs, key)
	}
	metrics.ActiveSubscriptions.Set(0)
}

// Has reports whether a channel key currently holds a subscription.
func (r *Registry) Has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.subs[key]
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
