package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hayoon/aptchat/chat/domain"
)

// Directory is the ordered room-list cache: replaced wholesale by Refresh,
// patched in place by broadcast updates. Rooms are never deleted here;
// closed rooms stay listed as INACTIVE.
type Directory struct {
	mu    sync.RWMutex
	api   RoomAPI
	rooms []domain.Room
	index map[int]int // room id -> position in rooms
}

func NewDirectory(api RoomAPI) *Directory {
	return &Directory{api: api, index: make(map[int]int)}
}

// Refresh fetches the full room list. On failure the previous cache stays
// intact so a transient error never blanks the list.
func (d *Directory) Refresh(ctx context.Context) ([]domain.Room, error) {
	rooms, err := d.api.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh rooms: %w", err)
	}

	index := make(map[int]int, len(rooms))
	for i := range rooms {
		rooms[i].Normalize()
		index[rooms[i].ID] = i
	}

	d.mu.Lock()
	d.rooms = rooms
	d.index = index
	d.mu.Unlock()
	return d.Rooms(), nil
}

// ApplyUpdate merges a broadcast patch into the matching room. Updates for
// unknown rooms are dropped, not inserted.
func (d *Directory) ApplyUpdate(p domain.RoomPatch) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	i, ok := d.index[p.ID]
	if !ok {
		log.Debug().Int("room_id", p.ID).Msg("dropping update for unknown room")
		return false
	}
	d.rooms[i].Apply(p)
	return true
}

// Rooms returns a copy of the cached list in fetch order.
func (d *Directory) Rooms() []domain.Room {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.Room, len(d.rooms))
	copy(out, d.rooms)
	return out
}

func (d *Directory) Get(id int) (domain.Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i, ok := d.index[id]
	if !ok {
		return domain.Room{}, false
	}
	return d.rooms[i], true
}

// Filter is a pure projection for UI-side search and status filtering.
func (d *Directory) Filter(pred func(domain.Room) bool) []domain.Room {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []domain.Room
	for _, room := range d.rooms {
		if pred(room) {
			out = append(out, room)
		}
	}
	return out
}

// MarkRead clears the unread flag locally once a room has been opened.
func (d *Directory) MarkRead(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i, ok := d.index[id]; ok {
		d.rooms[i].HasUnread = false
	}
}

func (d *Directory) setJoined(id int, joined bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i, ok := d.index[id]; ok {
		d.rooms[i].Joined = joined
	}
}
