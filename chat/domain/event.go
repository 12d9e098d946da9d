package domain

type EventType int

const (
	EventStateChanged EventType = iota
	EventDirectoryChanged
	EventTimelineChanged
	EventSystemNotice
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventStateChanged:
		return "state"
	case EventDirectoryChanged:
		return "directory"
	case EventTimelineChanged:
		return "timeline"
	case EventSystemNotice:
		return "notice"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is what the session publishes to whoever renders it.
type Event struct {
	Type   EventType
	RoomID int
	State  ConnectionState
	Notice string
	Err    error
}

func NewStateEvent(state ConnectionState) Event {
	return Event{Type: EventStateChanged, State: state}
}

func NewTimelineEvent(roomID int) Event {
	return Event{Type: EventTimelineChanged, RoomID: roomID}
}

func NewDirectoryEvent() Event {
	return Event{Type: EventDirectoryChanged}
}

func NewNoticeEvent(roomID int, notice string) Event {
	return Event{Type: EventSystemNotice, RoomID: roomID, Notice: notice}
}

func NewErrorEvent(err error) Event {
	return Event{Type: EventError, Err: err}
}
