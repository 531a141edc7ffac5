package chat

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/prompt-chat/backend/internal/model/chat"
	"github.com/zhouzirui/prompt-chat/backend/internal/service/webhook"
)

var ErrSessionNotFound = errors.New("session not found")

// Service tracks the live conversations of a server, keyed by their current
// session id. Each browser tab owns one conversation.
type Service struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
	sender        webhook.Sender
	storeOpts     []StoreOption
}

// NewService bootstraps the in-memory conversation registry.
func NewService(sender webhook.Sender, opts ...StoreOption) *Service {
	return &Service{
		conversations: make(map[string]*Conversation),
		sender:        sender,
		storeOpts:     opts,
	}
}

// CreateSession provisions a conversation with a fresh session.
func (s *Service) CreateSession(_ context.Context) *Conversation {
	conv := NewConversation(s.sender, NewStore(s.storeOpts...))

	s.mu.Lock()
	s.conversations[conv.SessionID()] = conv
	s.mu.Unlock()

	log.Info().Str("session_id", conv.SessionID()).Msg("session created")
	return conv
}

// GetSession retrieves a conversation by its current session id.
func (s *Service) GetSession(_ context.Context, sessionID string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return conv, nil
}

// ResetSession gives the conversation a new session id and empty history.
// The old id stops resolving.
func (s *Service) ResetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}

	session := conv.NewSession()
	delete(s.conversations, sessionID)
	s.conversations[session.ID] = conv
	return session, nil
}

// RemoveSession forgets a conversation.
func (s *Service) RemoveSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.conversations, sessionID)
	return nil
}

// Count returns the number of live conversations.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}
