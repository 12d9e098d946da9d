package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hayoon/aptchat/chat/domain"
)

type fakeSub struct {
	id          string
	destination string
	handler     func(string, []byte)
}

type fakeSend struct {
	destination string
	body        string
}

type fakeTransport struct {
	mu           sync.Mutex
	state        domain.ConnectionState
	subs         map[string]fakeSub
	sent         []fakeSend
	connectCalls int
	connectErr   error
	nextID       int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{subs: make(map[string]fakeSub)}
}

func (t *fakeTransport) Connect(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connectCalls++
	if t.connectErr != nil {
		t.state = domain.Disconnected
		return t.connectErr
	}
	t.state = domain.Connected
	return nil
}

func (t *fakeTransport) Disconnect() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = domain.Disconnected
	t.subs = make(map[string]fakeSub)
}

func (t *fakeTransport) Send(destination string, body []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != domain.Connected {
		return errors.New("fake: not connected")
	}
	t.sent = append(t.sent, fakeSend{destination: destination, body: string(body)})
	return nil
}

func (t *fakeTransport) Subscribe(destination string, handler func(string, []byte)) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != domain.Connected {
		return "", errors.New("fake: not connected")
	}
	t.nextID++
	sub := fakeSub{id: fmt.Sprintf("sub-%d", t.nextID), destination: destination, handler: handler}
	t.subs[sub.id] = sub
	return sub.id, nil
}

func (t *fakeTransport) Unsubscribe(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.subs, id)
	return nil
}

func (t *fakeTransport) State() domain.ConnectionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *fakeTransport) setState(state domain.ConnectionState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
}

func (t *fakeTransport) subsFor(destination string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, sub := range t.subs {
		if sub.destination == destination {
			n++
		}
	}
	return n
}

func (t *fakeTransport) sentFrames() []fakeSend {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]fakeSend(nil), t.sent...)
}

// deliver pushes one inbound frame at every handler subscribed to the
// destination, in transport delivery order.
func (t *fakeTransport) deliver(destination string, body string) {
	t.mu.Lock()
	var handlers []func(string, []byte)
	for _, sub := range t.subs {
		if sub.destination == destination {
			handlers = append(handlers, sub.handler)
		}
	}
	t.mu.Unlock()
	for _, h := range handlers {
		h(destination, []byte(body))
	}
}

type fakeAPI struct {
	mu            sync.Mutex
	rooms         []domain.Room
	listErr       error
	history       map[int][]domain.Message
	historyErr    error
	historyGate   map[int]chan struct{}
	joinErr       error
	listCalls     int
	historyCalls  []int
	joinCalls     []int
	leaveCalls    []int
	markReadCalls []int
	created       []string
}

func newFakeAPI(rooms ...domain.Room) *fakeAPI {
	return &fakeAPI{
		rooms:       rooms,
		history:     make(map[int][]domain.Message),
		historyGate: make(map[int]chan struct{}),
	}
}

func (a *fakeAPI) ListRooms(context.Context) ([]domain.Room, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listCalls++
	if a.listErr != nil {
		return nil, a.listErr
	}
	return append([]domain.Room(nil), a.rooms...), nil
}

func (a *fakeAPI) GetRoom(_ context.Context, id int) (domain.Room, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, room := range a.rooms {
		if room.ID == id {
			return room, nil
		}
	}
	return domain.Room{}, errors.New("fake: room not found")
}

func (a *fakeAPI) ListMessages(_ context.Context, id int) ([]domain.Message, error) {
	a.mu.Lock()
	gate := a.historyGate[id]
	a.historyCalls = append(a.historyCalls, id)
	err := a.historyErr
	msgs := append([]domain.Message(nil), a.history[id]...)
	a.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (a *fakeAPI) CreateRoom(_ context.Context, title string) (domain.Room, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.created = append(a.created, title)
	room := domain.Room{ID: 100 + len(a.created), Title: title, Joined: true}
	a.rooms = append(a.rooms, room)
	return room, nil
}

func (a *fakeAPI) JoinRoom(_ context.Context, id, currentRoomID int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.joinErr != nil {
		return a.joinErr
	}
	a.joinCalls = append(a.joinCalls, id)
	return nil
}

func (a *fakeAPI) LeaveRoom(_ context.Context, id int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.leaveCalls = append(a.leaveCalls, id)
	return nil
}

func (a *fakeAPI) MarkRead(_ context.Context, id int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.markReadCalls = append(a.markReadCalls, id)
	return nil
}

func (a *fakeAPI) historyCallCount(id int) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, call := range a.historyCalls {
		if call == id {
			n++
		}
	}
	return n
}

type fakeAdminAPI struct {
	*fakeAPI
	closeCalls []int
	closeErr   error
}

func (a *fakeAdminAPI) CloseRoom(_ context.Context, id int, notice string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closeErr != nil {
		return a.closeErr
	}
	a.closeCalls = append(a.closeCalls, id)
	return nil
}
