package session

import "errors"

// Guard errors surfaced before any network call. The UI layer presents
// them; none of them is fatal to the session.
var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrNoActiveRoom = errors.New("no active room")
	ErrNoUser       = errors.New("current user is not set")
	ErrNotConnected = errors.New("transport is not connected")
	ErrRoomClosed   = errors.New("room is closed")
	ErrAdminOnly    = errors.New("operation requires the admin backend")
)
