package session

import (
	"context"

	"github.com/hayoon/aptchat/chat/domain"
)

// Transport is the one live connection to the chat broker.
type Transport interface {
	Connect(ctx context.Context) error
	Disconnect()
	Send(destination string, body []byte) error
	Subscribe(destination string, handler func(destination string, body []byte)) (string, error)
	Unsubscribe(id string) error
	State() domain.ConnectionState
}

// RoomAPI is the role-scoped REST collaborator the session drives. The
// resident and admin backends expose the same operations under different
// paths; the session never knows which one it holds.
type RoomAPI interface {
	ListRooms(ctx context.Context) ([]domain.Room, error)
	GetRoom(ctx context.Context, id int) (domain.Room, error)
	ListMessages(ctx context.Context, id int) ([]domain.Message, error)
	CreateRoom(ctx context.Context, title string) (domain.Room, error)
	// JoinRoom registers membership; currentRoomID, when non-zero, lets the
	// backend atomically drop the previous membership.
	JoinRoom(ctx context.Context, id, currentRoomID int) error
	LeaveRoom(ctx context.Context, id int) error
	MarkRead(ctx context.Context, id int) error
}

// AdminAPI adds the close capability only the admin backend has.
type AdminAPI interface {
	RoomAPI
	CloseRoom(ctx context.Context, id int, notice string) error
}
