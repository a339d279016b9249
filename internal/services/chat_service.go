package services

import (
	"fmt"
	"strings"
	"sync/atomic"

	"emergenzchat/internal/logger"
	"emergenzchat/pkg/chattypes"
)

// ChatService runs the conversation loop for one session. It owns the
// model-bound history, sends the full history to the LLM client on every
// exchange, scores each reply, and reports outcomes through the event
// handler. One request may be outstanding at a time; submits arriving while
// busy are ignored rather than queued.
type ChatService struct {
	initialized bool
	session     *chattypes.ChatSession
	sessions    *SessionService
	scorer      *ScorerService
	client      chattypes.LLMClient
	model       *chattypes.ModelConfig
	handler     chattypes.EventHandler
	busy        atomic.Bool
}

// NewChatService creates a new ChatService for the given session.
func NewChatService(
	session *chattypes.ChatSession,
	sessions *SessionService,
	scorer *ScorerService,
	client chattypes.LLMClient,
	model *chattypes.ModelConfig,
	handler chattypes.EventHandler,
) *ChatService {
	return &ChatService{
		initialized: false,
		session:     session,
		sessions:    sessions,
		scorer:      scorer,
		client:      client,
		model:       model,
		handler:     handler,
	}
}

// Name returns the service name "chat" for registration.
func (c *ChatService) Name() string {
	return "chat"
}

// Initialize validates the service's collaborators.
func (c *ChatService) Initialize() error {
	if c.session == nil {
		return fmt.Errorf("chat service requires a session")
	}
	if c.sessions == nil || c.scorer == nil {
		return fmt.Errorf("chat service requires session and scorer services")
	}
	if c.client == nil {
		return fmt.Errorf("chat service requires an LLM client")
	}
	if c.model == nil {
		return fmt.Errorf("chat service requires a model configuration")
	}
	if c.handler == nil {
		return fmt.Errorf("chat service requires an event handler")
	}
	c.initialized = true
	return nil
}

// Session returns the session owned by this conversation loop.
func (c *ChatService) Session() *chattypes.ChatSession {
	return c.session
}

// Busy reports whether a request is currently in flight.
func (c *ChatService) Busy() bool {
	return c.busy.Load()
}

// HandleUserSubmit processes one user submission synchronously.
// Whitespace-only input is ignored. While a request is in flight, further
// submissions are ignored (no queueing, no cancellation). On success the
// reply is appended to the history, scored, and reported via
// OnAssistantTurnReady. On failure the error message is reported via
// OnError and no assistant turn is appended, so a failed exchange never
// pollutes the context sent on the next request.
func (c *ChatService) HandleUserSubmit(text string) {
	if !c.initialized {
		logger.Error("Chat service used before initialization")
		return
	}

	if strings.TrimSpace(text) == "" {
		logger.Debug("Ignoring empty submission")
		return
	}

	if !c.busy.CompareAndSwap(false, true) {
		logger.Debug("Ignoring submission while request in flight")
		return
	}
	defer c.busy.Store(false)

	if err := c.sessions.AddMessage(c.session, chattypes.RoleUser, text); err != nil {
		c.handler.OnError(err.Error())
		return
	}

	reply, err := c.client.SendChatCompletion(c.session, c.model)
	if err != nil {
		// The user turn stays in history; only the reply is missing.
		logger.Error("Model request failed", "error", err)
		c.handler.OnError(err.Error())
		return
	}

	if err := c.sessions.AddMessage(c.session, chattypes.RoleAssistant, reply); err != nil {
		c.handler.OnError(err.Error())
		return
	}

	score := c.scorer.Analyze(reply)
	logger.Debug("Exchange completed", "history_len", len(c.session.Messages), "score", score)
	c.handler.OnAssistantTurnReady(reply, score)
}
