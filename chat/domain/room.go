package domain

import (
	"fmt"
	"strings"
)

type RoomStatus string

const (
	RoomActive   RoomStatus = "ACTIVE"
	RoomInactive RoomStatus = "INACTIVE"
)

type Room struct {
	ID               int
	Title            string
	ParticipantCount int
	HasUnread        bool
	Joined           bool
	Status           RoomStatus
	CreatedAt        string
}

func DefaultRoomTitle(id int) string {
	return fmt.Sprintf("채팅방 #%d", id)
}

// Normalize fills the defaults the backend is allowed to omit.
func (r *Room) Normalize() {
	if strings.TrimSpace(r.Title) == "" {
		r.Title = DefaultRoomTitle(r.ID)
	}
	if r.ParticipantCount < 0 {
		r.ParticipantCount = 0
	}
	if r.Status == "" {
		r.Status = RoomActive
	}
}

func (r Room) Closed() bool {
	return r.Status == RoomInactive
}

// RoomPatch is a partial room update delivered on the broadcast updates
// channel. Nil fields were absent from the frame and leave the room as is.
type RoomPatch struct {
	ID               int         `json:"id"`
	Title            *string     `json:"title,omitempty"`
	ParticipantCount *int        `json:"participantCount,omitempty"`
	HasUnread        *bool       `json:"hasUnread,omitempty"`
	Status           *RoomStatus `json:"status,omitempty"`
}

func (r *Room) Apply(p RoomPatch) {
	if p.Title != nil && strings.TrimSpace(*p.Title) != "" {
		r.Title = *p.Title
	}
	if p.ParticipantCount != nil {
		r.ParticipantCount = *p.ParticipantCount
		if r.ParticipantCount < 0 {
			r.ParticipantCount = 0
		}
	}
	if p.HasUnread != nil {
		r.HasUnread = *p.HasUnread
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
}
