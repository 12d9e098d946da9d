package domain

import (
	"fmt"
	"strconv"
	"time"
)

// SystemSenderID marks synthetic messages that never reach the backend.
const SystemSenderID = 0

type Sender struct {
	Name      string
	AvatarURL string
	Apartment string
	Building  string
	Unit      string
}

type User struct {
	ID        int
	Name      string
	AvatarURL string
	Apartment string
	Building  string
	Unit      string
}

func (u User) Sender() Sender {
	return Sender{
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Apartment: u.Apartment,
		Building:  u.Building,
		Unit:      u.Unit,
	}
}

type Message struct {
	ID          int // server-assigned, 0 until round-tripped
	ClientID    string
	SenderID    int
	Body        string
	DisplayTime string
	System      bool
	Transient   bool
	Sender      Sender
}

// EffectiveKey is the dedup identity of a message: the server id when
// present, the client id as fallback, then sender/body/time.
func (m Message) EffectiveKey() string {
	if m.ID != 0 {
		return "id:" + strconv.Itoa(m.ID)
	}
	if m.ClientID != "" {
		return "cid:" + m.ClientID
	}
	return fmt.Sprintf("fb:%d|%s|%s", m.SenderID, m.Body, m.DisplayTime)
}

func NewSystemMessage(body string, now time.Time) Message {
	return Message{
		SenderID:    SystemSenderID,
		Body:        body,
		DisplayTime: DisplayTime(now, now),
		System:      true,
	}
}

// DisplayTime renders a timestamp once at ingestion: time-only for today,
// date plus time otherwise. It is never re-derived afterwards.
func DisplayTime(t, now time.Time) string {
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("2006-01-02 15:04")
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts the handful of formats the backend emits.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
