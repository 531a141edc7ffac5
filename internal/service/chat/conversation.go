package chat

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/prompt-chat/backend/internal/analysis/markup"
	"github.com/zhouzirui/prompt-chat/backend/internal/model/chat"
	"github.com/zhouzirui/prompt-chat/backend/internal/service/webhook"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("a reply is still pending")
)

// Exchange is the outcome of one send: the user entry and the assistant entry
// appended for it.
type Exchange struct {
	SessionID string
	User      chat.Message
	Assistant chat.Message
	// HTML is the formatted assistant reply.
	HTML string
	// Err is the webhook failure that produced an error reply, if any.
	Err error
}

// Failed reports whether the assistant entry describes a failed call.
func (e Exchange) Failed() bool {
	return e.Err != nil
}

// Conversation is the state behind one chat widget: a Store, the webhook it
// talks to and the loading flag that keeps a single call in flight.
type Conversation struct {
	store   *Store
	sender  webhook.Sender
	loading atomic.Bool
}

// NewConversation wires a conversation. A nil store gets a fresh one.
func NewConversation(sender webhook.Sender, store *Store) *Conversation {
	if store == nil {
		store = NewStore()
	}
	return &Conversation{store: store, sender: sender}
}

// Store exposes the underlying session and history.
func (c *Conversation) Store() *Store {
	return c.store
}

// SessionID returns the current session identifier.
func (c *Conversation) SessionID() string {
	return c.store.SessionID()
}

// Loading reports whether a webhook call is in flight.
func (c *Conversation) Loading() bool {
	return c.loading.Load()
}

// NewSession starts over with a fresh identifier and an empty history.
func (c *Conversation) NewSession() chat.Session {
	session := c.store.NewSession()
	log.Info().Str("session_id", session.ID).Msg("new session started")
	return session
}

// ExportSnapshot returns a detached copy of the conversation.
func (c *Conversation) ExportSnapshot() chat.Snapshot {
	return c.store.ExportSnapshot()
}

// ExportFileName names the export artifact of the current session.
func (c *Conversation) ExportFileName() string {
	return chat.ExportFileName(c.store.SessionID())
}

// Send forwards text to the webhook and records both sides of the exchange.
// Webhook failures do not surface as errors: they become the assistant entry.
// The returned error is reserved for ErrEmptyMessage and ErrBusy.
func (c *Conversation) Send(ctx context.Context, text string) (Exchange, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Exchange{}, ErrEmptyMessage
	}
	if !c.loading.CompareAndSwap(false, true) {
		return Exchange{}, ErrBusy
	}
	defer c.loading.Store(false)

	sessionID := c.store.SessionID()
	exchange := Exchange{
		SessionID: sessionID,
		User:      c.store.Append(chat.RoleUser, text),
	}

	reply, err := c.sender.SendChat(ctx, text, sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("error calling webhook")
		exchange.Err = err
		reply = ErrorReply(err)
	}

	exchange.Assistant = c.store.Append(chat.RoleAssistant, reply)
	exchange.HTML = markup.Format(reply)
	return exchange, nil
}

// ErrorReply is the assistant text shown when a webhook call fails.
func ErrorReply(err error) string {
	detail := strings.TrimSuffix(err.Error(), ".")
	return fmt.Sprintf("Sorry, I encountered an error: %s. Please try again in a moment.", detail)
}

// Render returns the HTML for a message: assistant replies are formatted,
// user input is escaped only.
func Render(msg chat.Message) string {
	if msg.Role == chat.RoleAssistant {
		return markup.Format(msg.Content)
	}
	return markup.PlainText(msg.Content)
}
