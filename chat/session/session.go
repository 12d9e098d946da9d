package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hayoon/aptchat/chat/domain"
)

const eventBuffer = 64

// Session owns the single transport connection, the subscription registry,
// the room directory and the active room's timeline. It is a constructed
// object: two sessions never share state. All mutation of the active-room
// fields happens here; the other components only take explicit calls.
type Session struct {
	api       RoomAPI
	tr        Transport
	user      domain.User
	directory *Directory
	timeline  *Timeline
	registry  *Registry

	mu           sync.Mutex
	activeRoomID int // 0 while no room is joined
	gen          int // bumped per transition; stale async completions are discarded

	events chan domain.Event
}

func New(api RoomAPI, tr Transport, user domain.User) *Session {
	s := &Session{
		api:       api,
		tr:        tr,
		user:      user,
		directory: NewDirectory(api),
		registry:  NewRegistry(tr),
		events:    make(chan domain.Event, eventBuffer),
	}
	s.timeline = NewTimeline(func() { s.emit(domain.NewTimelineEvent(s.ActiveRoomID())) })
	return s
}

// Events is the reactive feed the UI renders from. Sends never block; a
// consumer that falls behind loses notifications, not messages.
func (s *Session) Events() <-chan domain.Event {
	return s.events
}

func (s *Session) emit(ev domain.Event) {
	select {
	case s.events <- ev:
	default:
	}
}

func (s *Session) Directory() *Directory { return s.directory }

func (s *Session) Timeline() *Timeline { return s.timeline }

func (s *Session) User() domain.User { return s.user }

func (s *Session) State() domain.ConnectionState { return s.tr.State() }

// NotifyState forwards a transport state transition to the event feed.
// Wired as the transport's state callback at construction time.
func (s *Session) NotifyState(state domain.ConnectionState) {
	s.emit(domain.NewStateEvent(state))
}

func (s *Session) ActiveRoomID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeRoomID
}

// ActiveRoom returns the directory's view of the joined room.
func (s *Session) ActiveRoom() (domain.Room, bool) {
	id := s.ActiveRoomID()
	if id == 0 {
		return domain.Room{}, false
	}
	return s.directory.Get(id)
}

// SelectRoom drives the join/switch transition. Reselecting the active
// room is a no-op. On any failure the active room rolls back to the
// previous one, so the state never points at a room that was not fully
// established.
func (s *Session) SelectRoom(ctx context.Context, room domain.Room) error {
	s.mu.Lock()
	if room.ID == s.activeRoomID {
		s.mu.Unlock()
		return nil
	}
	prev := s.activeRoomID
	s.gen++
	gen := s.gen
	s.activeRoomID = room.ID
	s.mu.Unlock()

	s.timeline.Reset(nil)
	s.registry.DropRoomSubscription()

	joined := room.Joined
	if cached, ok := s.directory.Get(room.ID); ok {
		joined = cached.Joined
	}
	if !joined {
		if err := s.api.JoinRoom(ctx, room.ID, prev); err != nil {
			s.rollback(gen, prev)
			return fmt.Errorf("join room %d: %w", room.ID, err)
		}
		s.directory.setJoined(room.ID, true)
		if prev != 0 {
			// The join handed over the previous membership.
			s.directory.setJoined(prev, false)
		}
	}
	if s.stale(gen) {
		return nil
	}

	if err := s.tr.Connect(ctx); err != nil {
		s.rollback(gen, prev)
		return fmt.Errorf("connect: %w", err)
	}
	if s.stale(gen) {
		return nil
	}
	if err := s.registry.EnsureUpdatesSubscription(s.handleUpdateFrame); err != nil {
		s.rollback(gen, prev)
		return err
	}
	if err := s.registry.ReplaceRoomSubscription(room.ID, s.roomFrameHandler(room.ID)); err != nil {
		s.rollback(gen, prev)
		return err
	}

	history, err := s.api.ListMessages(ctx, room.ID)
	if err != nil {
		s.rollback(gen, prev)
		return fmt.Errorf("load history %d: %w", room.ID, err)
	}
	if s.stale(gen) {
		log.Debug().Int("room_id", room.ID).Msg("discarding history for superseded room switch")
		return nil
	}

	s.timeline.Reset(history)
	s.timeline.Append(domain.NewSystemMessage("채팅방에 입장했습니다.", time.Now()))

	if err := s.api.MarkRead(ctx, room.ID); err != nil {
		log.Warn().Err(err).Int("room_id", room.ID).Msg("mark read failed")
	}
	s.directory.MarkRead(room.ID)
	s.emit(domain.NewDirectoryEvent())
	return nil
}

// SendMessage publishes to the active room after the synchronous guards.
// There is no optimistic insert: the message shows up for the sender the
// same way it does for everyone else, on server echo.
func (s *Session) SendMessage(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	roomID := s.ActiveRoomID()
	if roomID == 0 {
		log.Warn().Msg("send dropped: no active room")
		return ErrNoActiveRoom
	}
	if s.user.ID == 0 {
		log.Warn().Msg("send dropped: no current user")
		return ErrNoUser
	}
	if room, ok := s.directory.Get(roomID); ok && room.Closed() {
		return ErrRoomClosed
	}
	if s.tr.State() != domain.Connected {
		log.Warn().Int("room_id", roomID).Msg("send dropped: not connected")
		return ErrNotConnected
	}

	payload, err := json.Marshal(domain.OutboundMessage{Message: text, UserID: s.user.ID})
	if err != nil {
		return err
	}
	return s.tr.Send(PublishDestination(roomID), payload)
}

// LeaveRoom exits the room on the backend then tears the session down.
// Local teardown happens even when the API call fails.
func (s *Session) LeaveRoom(ctx context.Context) error {
	roomID := s.ActiveRoomID()
	if roomID == 0 {
		return ErrNoActiveRoom
	}

	err := s.api.LeaveRoom(ctx, roomID)
	if err != nil {
		err = fmt.Errorf("leave room %d: %w", roomID, err)
	}

	s.teardown()
	s.directory.setJoined(roomID, false)
	s.emit(domain.NewDirectoryEvent())
	return err
}

// Disconnect tears down transport and subscriptions without the leave API
// call. Used when the UI goes away rather than when the user exits a room.
func (s *Session) Disconnect() {
	s.teardown()
}

func (s *Session) teardown() {
	s.mu.Lock()
	s.gen++
	s.activeRoomID = 0
	s.mu.Unlock()

	s.registry.Clear()
	s.tr.Disconnect()
	s.timeline.Reset(nil)
}

// CreateRoom creates a room and refreshes the directory.
func (s *Session) CreateRoom(ctx context.Context, title string) (domain.Room, error) {
	room, err := s.api.CreateRoom(ctx, title)
	if err != nil {
		return domain.Room{}, fmt.Errorf("create room: %w", err)
	}
	room.Normalize()
	if _, err := s.directory.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("directory refresh after create failed")
	}
	s.emit(domain.NewDirectoryEvent())
	return room, nil
}

// CloseRoom transitions a room to INACTIVE. Available only when the
// injected API collaborator is the admin one. The transport stays up; the
// closed-room rule is enforced by the SendMessage guard, not by
// connectivity.
func (s *Session) CloseRoom(ctx context.Context, roomID int, notice string) error {
	admin, ok := s.api.(AdminAPI)
	if !ok {
		return ErrAdminOnly
	}
	if err := admin.CloseRoom(ctx, roomID, notice); err != nil {
		return fmt.Errorf("close room %d: %w", roomID, err)
	}

	closed := domain.RoomInactive
	s.directory.ApplyUpdate(domain.RoomPatch{ID: roomID, Status: &closed})
	if s.ActiveRoomID() == roomID && notice != "" {
		s.timeline.Append(domain.NewSystemMessage(notice, time.Now()))
	}
	s.emit(domain.NewDirectoryEvent())
	return nil
}

func (s *Session) stale(gen int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen != s.gen
}

func (s *Session) rollback(gen int, prev int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.gen {
		s.activeRoomID = prev
	}
}

// roomFrameHandler converts broadcast frames of one room into timeline
// entries. The room id is captured at subscribe time and checked against
// the active room on every frame, so a late frame from a previous room can
// never leak into the new room's timeline.
func (s *Session) roomFrameHandler(roomID int) func(string, []byte) {
	return func(_ string, body []byte) {
		if s.ActiveRoomID() != roomID {
			log.Debug().Int("room_id", roomID).Msg("dropping frame for inactive room")
			return
		}
		var frame domain.MessageFrame
		if err := json.Unmarshal(body, &frame); err != nil {
			log.Warn().Err(err).Msg("dropping undecodable room frame")
			s.emit(domain.NewErrorEvent(fmt.Errorf("decode room frame: %w", err)))
			return
		}
		s.timeline.Append(s.toMessage(frame))
	}
}

func (s *Session) toMessage(frame domain.MessageFrame) domain.Message {
	return frame.ToMessage(s.user, time.Now())
}

func (s *Session) handleUpdateFrame(_ string, body []byte) {
	var patch domain.RoomPatch
	if err := json.Unmarshal(body, &patch); err != nil {
		log.Warn().Err(err).Msg("dropping undecodable room update")
		return
	}
	if !s.directory.ApplyUpdate(patch) {
		return
	}
	s.emit(domain.NewDirectoryEvent())
	if patch.Status != nil && *patch.Status == domain.RoomInactive && patch.ID == s.ActiveRoomID() {
		// The active room was closed from the other side.
		s.emit(domain.NewNoticeEvent(patch.ID, "채팅방이 종료되었습니다."))
	}
}
