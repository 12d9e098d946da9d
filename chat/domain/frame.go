package domain

import "time"

// MessageFrame is one inbound broadcast frame on a room channel.
type MessageFrame struct {
	ID              int    `json:"id,omitempty"`
	MessageID       int    `json:"messageId,omitempty"`
	ClientID        string `json:"clientId,omitempty"`
	UserID          int    `json:"userId"`
	Message         string `json:"message"`
	Timestamp       string `json:"timestamp,omitempty"`
	UserName        string `json:"userName,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
	ApartmentName   string `json:"apartmentName,omitempty"`
	BuildingName    string `json:"buildingName,omitempty"`
	UnitNumber      string `json:"unitNumber,omitempty"`
}

// ToMessage resolves the frame into a timeline entry. The sender snapshot
// is resolved exactly once: the configured identity for own messages, the
// frame's fields for everyone else. Later profile changes never rewrite
// history.
func (f MessageFrame) ToMessage(self User, now time.Time) Message {
	ts := now
	if t, ok := ParseTimestamp(f.Timestamp); ok {
		ts = t
	}

	serverID := f.ID
	if serverID == 0 {
		serverID = f.MessageID
	}
	msg := Message{
		ID:          serverID,
		ClientID:    f.ClientID,
		SenderID:    f.UserID,
		Body:        f.Message,
		DisplayTime: DisplayTime(ts, now),
		System:      f.UserID == SystemSenderID,
	}
	if f.UserID == self.ID && self.ID != 0 {
		msg.Sender = self.Sender()
		return msg
	}
	msg.Sender = Sender{
		Name:      f.UserName,
		AvatarURL: f.ProfileImageURL,
		Apartment: f.ApartmentName,
		Building:  f.BuildingName,
		Unit:      f.UnitNumber,
	}
	return msg
}

// OutboundMessage is the payload published to a room's publish destination.
type OutboundMessage struct {
	Message string `json:"message"`
	UserID  int    `json:"userId"`
}
