package services

import (
	"fmt"
	"strings"
	"time"

	"emergenzchat/internal/logger"
	"emergenzchat/pkg/chattypes"

	"github.com/google/uuid"
)

// History trimming policy: once the history grows past maxHistoryMessages,
// only the most recent historyRetainCount messages survive. The retained
// count is deliberately below the trigger threshold, so a trim drops the
// oldest messages beyond the cutoff in one step instead of shifting by one
// on every append.
const (
	maxHistoryMessages = 20
	historyRetainCount = 18
)

// Default conversation setup. The persona and opener are fixed; the chat is
// a German-language conversation about emergence.
const (
	DefaultSystemPrompt = "Du bist ein neugieriger, philosophischer Gesprächspartner. " +
		"Du sprichst Deutsch, antwortest kurz und lebendig und interessierst dich " +
		"besonders für Emergenz, komplexe Systeme und überraschende Muster."
	DefaultOpeningMessage = "Weißt du eigentlich, was Emergenz bedeutet?"
)

// SessionService manages conversation sessions and their message history.
// It owns the append-and-trim bookkeeping; sessions themselves are plain
// structs passed in by the caller, never stored globally.
type SessionService struct {
	initialized bool
}

// NewSessionService creates a new SessionService instance.
func NewSessionService() *SessionService {
	return &SessionService{initialized: false}
}

// Name returns the service name "session" for registration.
func (s *SessionService) Name() string {
	return "session"
}

// Initialize sets up the SessionService for operation.
func (s *SessionService) Initialize() error {
	s.initialized = true
	return nil
}

// CreateSession creates a new chat session. When openingMessage is
// non-empty it is seeded as the first, assistant-authored turn so the
// conversation starts with the model's opener.
func (s *SessionService) CreateSession(name, systemPrompt, openingMessage string) (*chattypes.ChatSession, error) {
	if !s.initialized {
		return nil, fmt.Errorf("session service not initialized")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("session name cannot be empty")
	}

	now := time.Now()
	session := &chattypes.ChatSession{
		ID:           uuid.New().String(),
		Name:         name,
		SystemPrompt: systemPrompt,
		Messages:     make([]chattypes.Message, 0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if openingMessage != "" {
		session.Messages = append(session.Messages, chattypes.Message{
			ID:        uuid.New().String(),
			Role:      chattypes.RoleAssistant,
			Content:   openingMessage,
			Timestamp: now,
		})
	}

	logger.Debug("Session created", "session_id", session.ID, "name", name)
	return session, nil
}

// AddMessage appends a message to the session's history and applies the
// trimming policy. Appending itself has no failure mode; validation of the
// content (e.g. rejecting blank user input) is the caller's concern.
func (s *SessionService) AddMessage(session *chattypes.ChatSession, role, content string) error {
	if !s.initialized {
		return fmt.Errorf("session service not initialized")
	}

	now := time.Now()
	session.Messages = append(session.Messages, chattypes.Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	session.UpdatedAt = now

	s.trimHistory(session)
	return nil
}

// trimHistory enforces the history cap. This is a hard cutoff, not a
// sliding window: when the history exceeds maxHistoryMessages, exactly the
// most recent historyRetainCount messages survive, in their original order.
func (s *SessionService) trimHistory(session *chattypes.ChatSession) {
	if len(session.Messages) <= maxHistoryMessages {
		return
	}

	dropped := len(session.Messages) - historyRetainCount
	session.Messages = session.Messages[dropped:]
	logger.Debug("History trimmed", "session_id", session.ID, "dropped", dropped, "retained", len(session.Messages))
}

// MessageCount returns the number of messages currently in the session.
func (s *SessionService) MessageCount(session *chattypes.ChatSession) int {
	return len(session.Messages)
}
