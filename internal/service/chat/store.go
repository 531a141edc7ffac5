package chat

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/prompt-chat/backend/internal/model/chat"
)

// Store holds one session identifier and its append-only message history.
type Store struct {
	mu       sync.RWMutex
	session  chat.Session
	messages []chat.Message
	now      func() time.Time
	newID    func(time.Time) string
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithClock overrides the time source used for timestamps and session ids.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSessionIDGenerator overrides how session identifiers are minted.
func WithSessionIDGenerator(gen func(time.Time) string) StoreOption {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewStore returns a Store that already holds a fresh session.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		now:   time.Now,
		newID: GenerateSessionID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.NewSession()
	return s
}

// GenerateSessionID combines the wall clock in milliseconds with random bits,
// e.g. session_1718000000000_3f9a0c1de.
func GenerateSessionID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return "session_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + random
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// NewSession replaces the session identifier and drops the whole history.
func (s *Store) NewSession() chat.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timestamp()
	s.session = chat.Session{ID: s.newID(now), CreatedAt: now}
	// A new backing array keeps earlier Messages() copies and snapshots intact.
	s.messages = make([]chat.Message, 0, 16)
	return s.session
}

// Append records a message stamped with the current time.
func (s *Store) Append(role chat.Role, content string) chat.Message {
	msg := chat.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: s.timestamp(),
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()

	return msg
}

// Session returns the current session.
func (s *Store) Session() chat.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// SessionID returns the current session identifier.
func (s *Store) SessionID() string {
	return s.Session().ID
}

// Messages returns a copy of the history in insertion order.
func (s *Store) Messages() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]chat.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// Len returns the number of recorded messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// ExportSnapshot captures the session and history as they are right now.
func (s *Store) ExportSnapshot() chat.Snapshot {
	exportedAt := s.timestamp()

	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := make([]chat.Message, len(s.messages))
	copy(messages, s.messages)
	return chat.Snapshot{
		SessionID:  s.session.ID,
		Messages:   messages,
		ExportedAt: exportedAt,
	}
}
