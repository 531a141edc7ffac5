// Package webhook talks to the remote chat workflow that produces replies.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DefaultURL is the public prompt generator workflow.
const DefaultURL = "https://primary-production-6fee2c.up.railway.app/webhook/0b11303c-bec4-4d78-9165-a4b9fb4a95ad/chat"

// Sender is the capability the chat core depends on.
type Sender interface {
	SendChat(ctx context.Context, message, sessionID string) (string, error)
}

type chatRequest struct {
	ChatInput string `json:"chatInput"`
	SessionID string `json:"sessionId"`
}

// Client posts chat input to a fixed webhook URL.
type Client struct {
	url        string
	httpClient *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every call. Zero keeps calls unbounded.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			hc := *c.httpClient
			hc.Timeout = timeout
			c.httpClient = &hc
		}
	}
}

// NewClient creates a webhook client. An empty url falls back to DefaultURL.
func NewClient(url string, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url:        url,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint the client posts to.
func (c *Client) URL() string {
	return c.url
}

// SendChat posts one message and returns the extracted reply text.
func (c *Client) SendChat(ctx context.Context, message, sessionID string) (string, error) {
	payload, err := json.Marshal(chatRequest{ChatInput: message, SessionID: sessionID})
	if err != nil {
		return "", errors.Wrap(err, "encode chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", errors.Wrap(ctxErr, "webhook call aborted")
		}
		log.Warn().Err(err).Str("session_id", sessionID).Msg("webhook unreachable")
		return "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		log.Warn().Int("status", resp.StatusCode).Str("session_id", sessionID).Msg("webhook returned error status")
		return "", &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Err: errors.Wrap(err, "read webhook response")}
	}

	reply := ExtractReply(body)
	log.Debug().
		Str("session_id", sessionID).
		Dur("elapsed", time.Since(started)).
		Int("reply_len", len(reply)).
		Msg("webhook reply received")
	return reply, nil
}
