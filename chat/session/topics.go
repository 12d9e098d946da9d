package session

import "fmt"

// UpdatesKey is the registry key of the global room-list channel.
const UpdatesKey = "updates"

// UpdatesTopic carries partial room updates for every room.
const UpdatesTopic = "/sub/chats/updates"

func RoomKey(roomID int) string {
	return fmt.Sprintf("room-%d", roomID)
}

func RoomTopic(roomID int) string {
	return fmt.Sprintf("/sub/chats/%d", roomID)
}

func PublishDestination(roomID int) string {
	return fmt.Sprintf("/pub/chats/%d", roomID)
}
