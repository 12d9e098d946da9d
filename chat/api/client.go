// Package api implements the room backend over its REST endpoints.
// Resident and admin path sets differ only by prefix, so one client type
// serves both roles.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hayoon/aptchat/chat/domain"
	"github.com/hayoon/aptchat/chat/session"
)

const requestTimeout = 10 * time.Second

// Client talks to the room backend for one role. It is safe for
// concurrent use.
type Client struct {
	base   string
	prefix string
	user   domain.User
	hc     *http.Client
}

// AdminClient extends Client with the close operation, which only the
// admin path set exposes.
type AdminClient struct {
	*Client
}

var (
	_ session.RoomAPI  = (*Client)(nil)
	_ session.AdminAPI = (*AdminClient)(nil)
)

// NewResident returns a client bound to the resident endpoints.
func NewResident(baseURL string, user domain.User) *Client {
	return newClient(baseURL, "", user)
}

// NewAdmin returns a client bound to the admin endpoints.
func NewAdmin(baseURL string, user domain.User) *AdminClient {
	return &AdminClient{Client: newClient(baseURL, "/admin", user)}
}

func newClient(baseURL, prefix string, user domain.User) *Client {
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		prefix: prefix,
		user:   user,
		hc:     &http.Client{Timeout: requestTimeout},
	}
}

type roomDTO struct {
	ID               int    `json:"id"`
	Title            string `json:"title"`
	ParticipantCount int    `json:"participantCount"`
	HasUnread        bool   `json:"hasUnread"`
	Joined           bool   `json:"joined"`
	Status           string `json:"status"`
	CreatedAt        string `json:"createdAt"`
}

type createRoomRequest struct {
	Title string `json:"title"`
}

type closeRoomRequest struct {
	Message string `json:"message"`
}

func (c *Client) toRoom(dto roomDTO) domain.Room {
	room := domain.Room{
		ID:               dto.ID,
		Title:            dto.Title,
		ParticipantCount: dto.ParticipantCount,
		HasUnread:        dto.HasUnread,
		Joined:           dto.Joined,
		Status:           domain.RoomStatus(dto.Status),
		CreatedAt:        dto.CreatedAt,
	}
	room.Normalize()
	return room
}

func (c *Client) ListRooms(ctx context.Context) ([]domain.Room, error) {
	var dtos []roomDTO
	if err := c.getJSON(ctx, c.url("/chats"), &dtos); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	rooms := make([]domain.Room, 0, len(dtos))
	for _, dto := range dtos {
		rooms = append(rooms, c.toRoom(dto))
	}
	return rooms, nil
}

func (c *Client) GetRoom(ctx context.Context, id int) (domain.Room, error) {
	var dto roomDTO
	if err := c.getJSON(ctx, c.roomURL(id, ""), &dto); err != nil {
		return domain.Room{}, fmt.Errorf("get room %d: %w", id, err)
	}
	return c.toRoom(dto), nil
}

func (c *Client) ListMessages(ctx context.Context, id int) ([]domain.Message, error) {
	var frames []domain.MessageFrame
	if err := c.getJSON(ctx, c.roomURL(id, "/messages"), &frames); err != nil {
		return nil, fmt.Errorf("list messages %d: %w", id, err)
	}
	now := time.Now()
	msgs := make([]domain.Message, 0, len(frames))
	for _, frame := range frames {
		msgs = append(msgs, frame.ToMessage(c.user, now))
	}
	return msgs, nil
}

func (c *Client) CreateRoom(ctx context.Context, title string) (domain.Room, error) {
	var dto roomDTO
	if err := c.do(ctx, http.MethodPost, c.url("/chats"), createRoomRequest{Title: title}, &dto); err != nil {
		return domain.Room{}, fmt.Errorf("create room: %w", err)
	}
	return c.toRoom(dto), nil
}

// JoinRoom enrolls the user in a room. A non-zero currentRoomID is handed
// over so the backend leaves the previous room in the same operation.
func (c *Client) JoinRoom(ctx context.Context, id, currentRoomID int) error {
	u := c.roomURL(id, "/users")
	if currentRoomID != 0 {
		u += "?currentChatroomId=" + strconv.Itoa(currentRoomID)
	}
	if err := c.do(ctx, http.MethodPost, u, nil, nil); err != nil {
		return fmt.Errorf("join room %d: %w", id, err)
	}
	return nil
}

func (c *Client) LeaveRoom(ctx context.Context, id int) error {
	if err := c.do(ctx, http.MethodDelete, c.roomURL(id, "/users"), nil, nil); err != nil {
		return fmt.Errorf("leave room %d: %w", id, err)
	}
	return nil
}

func (c *Client) MarkRead(ctx context.Context, id int) error {
	if err := c.do(ctx, http.MethodPost, c.roomURL(id, "/read"), nil, nil); err != nil {
		return fmt.Errorf("mark read %d: %w", id, err)
	}
	return nil
}

// CloseRoom transitions the room to INACTIVE with a farewell notice.
func (c *AdminClient) CloseRoom(ctx context.Context, id int, notice string) error {
	if err := c.do(ctx, http.MethodPost, c.roomURL(id, "/close"), closeRoomRequest{Message: notice}, nil); err != nil {
		return fmt.Errorf("close room %d: %w", id, err)
	}
	return nil
}

func (c *Client) url(path string) string {
	return c.base + c.prefix + path
}

func (c *Client) roomURL(id int, suffix string) string {
	return c.url("/chats/" + strconv.Itoa(id) + suffix)
}

// getJSON fetches a URL into out. A 2xx body that is not the expected JSON
// shape is treated as empty rather than failing the caller, since some
// backend routes answer empty-body 200 or an HTML error page behind a
// proxy.
func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	body, err := c.request(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		log.Warn().Str("url", redact(u)).Err(err).Msg("ignoring undecodable response body")
		return nil
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, u string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return err
		}
	}
	body, err := c.request(ctx, method, u, payload)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		log.Warn().Str("url", redact(u)).Err(err).Msg("ignoring undecodable response body")
	}
	return nil
}

func (c *Client) request(ctx context.Context, method, u string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// StatusError reports a non-2xx backend answer.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned %d", e.Code)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Body)
}

func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	return u.String()
}
