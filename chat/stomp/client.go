package stomp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/hayoon/aptchat/chat/domain"
	"github.com/hayoon/aptchat/chat/metrics"
)

const (
	heartbeatInterval = 4 * time.Second
	reconnectDelay    = 5 * time.Second
	handshakeTimeout  = 10 * time.Second
	writeTimeout      = 10 * time.Second
)

var ErrNotConnected = errors.New("stomp: not connected")

// EndpointURL derives the websocket connect endpoint from the configured
// API base URL.
func EndpointURL(apiBase string) string {
	u := strings.TrimRight(apiBase, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/stomp/chats"
}

type subscription struct {
	id          string
	destination string
	handler     func(destination string, body []byte)
}

// Client keeps one STOMP connection to the chat endpoint. Connection drops
// are redialed after a fixed delay and existing subscriptions are
// re-established; application-level operations are never retried here.
type Client struct {
	endpoint string
	dialer   *websocket.Dialer

	// onState sees every connection state transition. It runs with the
	// client lock held and must not call back into the client.
	onState func(domain.ConnectionState)

	mu      sync.Mutex
	conn    *websocket.Conn
	state   domain.ConnectionState
	subs    map[string]subscription
	closing bool
	gen     int
}

func NewClient(endpoint string, onState func(domain.ConnectionState)) *Client {
	return &Client{
		endpoint: endpoint,
		dialer:   &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		onState:  onState,
		subs:     make(map[string]subscription),
	}
}

func (c *Client) State() domain.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect tears down any prior connection and opens a new one.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	c.closing = false
	c.gen++
	gen := c.gen
	c.dropConnLocked()
	c.setStateLocked(domain.Connecting)
	c.mu.Unlock()

	err := c.dial(ctx, gen)
	if err != nil {
		c.mu.Lock()
		if gen == c.gen {
			c.setStateLocked(domain.Disconnected)
		}
		c.mu.Unlock()
	}
	return err
}

func (c *Client) dial(ctx context.Context, gen int) error {
	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("stomp: dial %s: %w", c.endpoint, err)
	}

	if err := c.handshake(conn); err != nil {
		conn.Close()
		return err
	}

	c.mu.Lock()
	if c.closing || gen != c.gen {
		c.mu.Unlock()
		conn.Close()
		return nil
	}
	c.conn = conn
	c.setStateLocked(domain.Connected)
	metrics.Connections.Inc()
	resub := make([]subscription, 0, len(c.subs))
	for _, sub := range c.subs {
		resub = append(resub, sub)
	}
	c.mu.Unlock()

	for _, sub := range resub {
		if err := c.writeFrame(subscribeFrame(sub)); err != nil {
			log.Warn().Err(err).Str("destination", sub.destination).Msg("resubscribe failed")
		}
	}

	go c.readLoop(conn, gen)
	go c.heartbeatLoop(conn, gen)
	return nil
}

func (c *Client) handshake(conn *websocket.Conn) error {
	host := c.endpoint
	if u, err := url.Parse(c.endpoint); err == nil {
		host = u.Host
	}
	connect := NewFrame(CmdConnect, map[string]string{
		HdrAcceptVersion: "1.2",
		HdrHeartBeat:     "4000,4000",
		HdrHost:          host,
	}, nil)

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, connect.Marshal()); err != nil {
		return fmt.Errorf("stomp: send CONNECT: %w", err)
	}

	deadline := time.Now().Add(handshakeTimeout)
	for {
		conn.SetReadDeadline(deadline)
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("stomp: handshake read: %w", err)
		}
		frame, err := Parse(data)
		if err != nil {
			return fmt.Errorf("stomp: handshake: %w", err)
		}
		if frame == nil {
			continue
		}
		if frame.Command != CmdConnected {
			return fmt.Errorf("stomp: handshake got %s: %s", frame.Command, frame.Headers[HdrMessage])
		}
		return nil
	}
}

func (c *Client) readLoop(conn *websocket.Conn, gen int) {
	for {
		conn.SetReadDeadline(time.Now().Add(3 * heartbeatInterval))
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleDrop(conn, gen, err)
			return
		}
		frame, err := Parse(data)
		if err != nil {
			log.Warn().Err(err).Msg("dropping malformed frame")
			continue
		}
		if frame == nil {
			continue // heartbeat
		}
		switch frame.Command {
		case CmdMessage:
			metrics.MessagesInTotal.Inc()
			c.dispatch(frame)
		case CmdError:
			log.Error().Str("message", frame.Headers[HdrMessage]).Msg("broker error frame")
		case CmdReceipt:
		default:
			log.Debug().Str("command", frame.Command).Msg("ignoring frame")
		}
	}
}

func (c *Client) dispatch(frame *Frame) {
	dest := frame.Headers[HdrDestination]
	subID := frame.Headers[HdrSubscription]

	c.mu.Lock()
	sub, ok := c.subs[subID]
	if !ok {
		for _, s := range c.subs {
			if s.destination == dest {
				sub, ok = s, true
				break
			}
		}
	}
	c.mu.Unlock()

	if !ok {
		log.Debug().Str("destination", dest).Msg("frame for unknown subscription")
		return
	}
	sub.handler(dest, frame.Body)
}

func (c *Client) heartbeatLoop(conn *websocket.Conn, gen int) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for range ticker.C {
		c.mu.Lock()
		if gen != c.gen || c.conn != conn {
			c.mu.Unlock()
			return
		}
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		err := conn.WriteMessage(websocket.TextMessage, []byte("\n"))
		c.mu.Unlock()
		if err != nil {
			return
		}
	}
}

func (c *Client) handleDrop(conn *websocket.Conn, gen int, err error) {
	c.mu.Lock()
	if gen != c.gen || c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	metrics.Connections.Dec()
	c.setStateLocked(domain.Connecting)
	c.mu.Unlock()

	conn.Close()
	log.Warn().Err(err).Dur("retry_in", reconnectDelay).Msg("connection dropped")
	time.AfterFunc(reconnectDelay, func() { c.reconnect(gen) })
}

func (c *Client) reconnect(gen int) {
	c.mu.Lock()
	if c.closing || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	metrics.ReconnectsTotal.Inc()
	if err := c.dial(context.Background(), gen); err != nil {
		log.Warn().Err(err).Dur("retry_in", reconnectDelay).Msg("reconnect failed")
		time.AfterFunc(reconnectDelay, func() { c.reconnect(gen) })
	}
}

// Subscribe registers a handler invoked once per inbound frame on the
// destination, in transport delivery order.
func (c *Client) Subscribe(destination string, handler func(destination string, body []byte)) (string, error) {
	sub := subscription{
		id:          "sub-" + ulid.Make().String(),
		destination: destination,
		handler:     handler,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.writeFrameLocked(subscribeFrame(sub)); err != nil {
		return "", err
	}
	c.subs[sub.id] = sub
	return sub.id, nil
}

func (c *Client) Unsubscribe(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.subs[id]; !ok {
		return nil
	}
	delete(c.subs, id)
	err := c.writeFrameLocked(NewFrame(CmdUnsubscribe, map[string]string{HdrID: id}, nil))
	if errors.Is(err, ErrNotConnected) {
		// Nothing on the wire to tear down.
		return nil
	}
	return err
}

// Send publishes a payload to a destination. The caller is expected to
// pre-check connection state; failures here are logged and returned.
func (c *Client) Send(destination string, body []byte) error {
	frame := NewFrame(CmdSend, map[string]string{
		HdrDestination: destination,
		HdrContentType: "application/json",
	}, body)

	c.mu.Lock()
	err := c.writeFrameLocked(frame)
	c.mu.Unlock()
	if err != nil {
		log.Warn().Err(err).Str("destination", destination).Msg("send failed")
		return err
	}
	metrics.MessagesOutTotal.Inc()
	return nil
}

// Disconnect is idempotent and cancels any pending reconnect.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closing = true
	c.gen++
	if c.conn != nil {
		c.conn.SetWriteDeadline(time.Now().Add(time.Second))
		_ = c.conn.WriteMessage(websocket.TextMessage, NewFrame(CmdDisconnect, nil, nil).Marshal())
	}
	c.dropConnLocked()
	c.subs = make(map[string]subscription)
	if c.state != domain.Disconnected {
		c.setStateLocked(domain.Disconnected)
	}
}

func (c *Client) dropConnLocked() {
	if c.conn == nil {
		return
	}
	c.conn.Close()
	c.conn = nil
	metrics.Connections.Dec()
}

func (c *Client) writeFrame(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeFrameLocked(f)
}

func (c *Client) writeFrameLocked(f Frame) error {
	if c.conn == nil || c.state != domain.Connected {
		return ErrNotConnected
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, f.Marshal())
}

func (c *Client) setStateLocked(state domain.ConnectionState) {
	if c.state == state {
		return
	}
	c.state = state
	if c.onState != nil {
		c.onState(state)
	}
}

func subscribeFrame(sub subscription) Frame {
	return NewFrame(CmdSubscribe, map[string]string{
		HdrID:          sub.id,
		HdrDestination: sub.destination,
	}, nil)
}
