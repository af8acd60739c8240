// Package remote implements the transport-level sync API client: batch push,
// cursor pull, and the dedicated share endpoint. The client is stateless;
// every call is a single round trip.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"example.com/workoutsync/internal/domain"
)

// TokenSource supplies the bearer token attached to every request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ProtocolError is a server-side semantic rejection (4xx). Mutations failing
// this way are never retried automatically.
type ProtocolError struct {
	Status int
	Code   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("server rejected request (%d): %s", e.Status, e.Code)
}

// AsProtocolError unwraps err into a ProtocolError if it is one.
func AsProtocolError(err error) (*ProtocolError, bool) {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// PushMutation is one outbox entry on the wire.
type PushMutation struct {
	QueueID   int64           `json:"queue_id"`
	Action    domain.Action   `json:"action"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt int64           `json:"created_at"`
}

// PushAck maps an acknowledged queue entry to the server identity it created.
type PushAck struct {
	QueueID  int64 `json:"queue_id"`
	ServerID int64 `json:"server_id"`
}

// PushResponse is the body of POST /sync/push.
type PushResponse struct {
	Processed  int       `json:"processed"`
	ServerTime string    `json:"server_time"`
	Results    []PushAck `json:"results"`
}

// Event is one server-originated change returned by pull.
type Event struct {
	ID        int64           `json:"id"`
	Action    domain.Action   `json:"action"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt int64           `json:"created_at"`
}

// PullResponse is the body of GET /sync/pull.
type PullResponse struct {
	ServerTime string  `json:"server_time"`
	Events     []Event `json:"events"`
}

// ShareResponse is the body of the share endpoint.
type ShareResponse struct {
	ShareID       string `json:"share_id"`
	OwnerID       string `json:"owner_id"`
	OwnerUsername string `json:"owner_username"`
	WorkoutTitle  string `json:"workout_title"`
	ExerciseCount int    `json:"exercise_count"`
	SetCount      int    `json:"set_count"`
	CreatedAt     string `json:"created_at"`
}

// Client talks to the remote sync service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// New constructs a Client with sane defaults.
func New(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// Push submits a batch of mutations. An empty batch short-circuits locally
// without a network call.
func (c *Client) Push(ctx context.Context, batch []PushMutation) (*PushResponse, error) {
	if len(batch) == 0 {
		return &PushResponse{
			Processed:  0,
			ServerTime: time.Now().UTC().Format(time.RFC3339Nano),
			Results:    []PushAck{},
		}, nil
	}

	body, err := json.Marshal(map[string]any{"mutations": batch})
	if err != nil {
		return nil, err
	}

	var resp PushResponse
	if err := c.do(ctx, http.MethodPost, "/sync/push", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Pull fetches server events newer than the watermark. since=0 means from
// the beginning.
func (c *Client) Pull(ctx context.Context, since int64) (*PullResponse, error) {
	var resp PullResponse
	path := "/sync/pull?since=" + strconv.FormatInt(since, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ShareWorkout publishes a workout through the dedicated single-item
// endpoint. The workout is addressed by its client_id.
func (c *Client) ShareWorkout(ctx context.Context, workoutClientID, userID string) (*ShareResponse, error) {
	body, err := json.Marshal(map[string]string{"user_id": userID})
	if err != nil {
		return nil, err
	}

	var resp ShareResponse
	path := "/share/workouts/" + url.PathEscape(workoutClientID)
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("mint token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ProtocolError{Status: resp.StatusCode, Code: errorCode(resp.Body)}
	}
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, payload)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// errorCode extracts the machine-readable code from an error body. The
// server uses {"detail": "<code>"}.
func errorCode(body io.Reader) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 4096)).Decode(&payload); err != nil || payload.Detail == "" {
		return "request_rejected"
	}
	return payload.Detail
}

// ParseServerTime converts the ISO-8601 server_time into epoch millis.
func ParseServerTime(value string) (int64, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UnixMilli(), true
		}
	}
	return 0, false
}
