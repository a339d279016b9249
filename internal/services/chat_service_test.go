package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emergenzchat/pkg/chattypes"
)

// mockLLMClient returns a canned reply or error and records call counts.
type mockLLMClient struct {
	reply       string
	err         error
	calls       int
	historyLens []int
}

func (m *mockLLMClient) SendChatCompletion(session *chattypes.ChatSession, _ *chattypes.ModelConfig) (string, error) {
	m.calls++
	m.historyLens = append(m.historyLens, len(session.Messages))
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLMClient) GetProviderName() string { return "mock" }
func (m *mockLLMClient) IsConfigured() bool      { return true }

// blockingLLMClient parks inside SendChatCompletion until released, so tests
// can observe the in-flight state.
type blockingLLMClient struct {
	entered chan struct{}
	release chan struct{}
	calls   int
}

func (b *blockingLLMClient) SendChatCompletion(_ *chattypes.ChatSession, _ *chattypes.ModelConfig) (string, error) {
	b.calls++
	close(b.entered)
	<-b.release
	return "fertig", nil
}

func (b *blockingLLMClient) GetProviderName() string { return "blocking" }
func (b *blockingLLMClient) IsConfigured() bool      { return true }

// recordingHandler captures emitted events for assertions.
type recordingHandler struct {
	replies []string
	scores  []int
	errors  []string
}

func (h *recordingHandler) OnAssistantTurnReady(text string, score int) {
	h.replies = append(h.replies, text)
	h.scores = append(h.scores, score)
}

func (h *recordingHandler) OnError(message string) {
	h.errors = append(h.errors, message)
}

func newTestModelConfig() *chattypes.ModelConfig {
	return &chattypes.ModelConfig{
		Provider:   "mock",
		BaseModel:  "mock-model",
		Parameters: map[string]interface{}{"temperature": 0.9},
	}
}

func newTestChatService(t *testing.T, client chattypes.LLMClient, handler chattypes.EventHandler) (*ChatService, *chattypes.ChatSession) {
	sessions := newTestSessionService(t)
	session, err := sessions.CreateSession("test", DefaultSystemPrompt, DefaultOpeningMessage)
	require.NoError(t, err)

	chat := NewChatService(session, sessions, newTestScorer(t), client, newTestModelConfig(), handler)
	require.NoError(t, chat.Initialize())
	return chat, session
}

func TestChatService_Name(t *testing.T) {
	chat := NewChatService(nil, nil, nil, nil, nil, nil)
	assert.Equal(t, "chat", chat.Name())
}

func TestChatService_Initialize_MissingCollaborators(t *testing.T) {
	chat := NewChatService(nil, nil, nil, nil, nil, nil)
	assert.Error(t, chat.Initialize())
}

func TestChatService_SuccessfulExchange(t *testing.T) {
	client := &mockLLMClient{reply: "Emergenz entsteht überall!"}
	handler := &recordingHandler{}
	chat, session := newTestChatService(t, client, handler)

	chat.HandleUserSubmit("Ja, total überraschend und emergent!")

	// Opener + user turn + assistant reply.
	require.Len(t, session.Messages, 3)
	assert.Equal(t, chattypes.RoleAssistant, session.Messages[0].Role)
	assert.Equal(t, chattypes.RoleUser, session.Messages[1].Role)
	assert.Equal(t, chattypes.RoleAssistant, session.Messages[2].Role)
	assert.Equal(t, "Emergenz entsteht überall!", session.Messages[2].Content)

	// The full history including the new user turn was sent to the model.
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, []int{2}, client.historyLens)

	// The reply was scored, not the user's own message:
	// "emergenz" + "entsteh" (2 keywords) and one "!" is 40.
	require.Len(t, handler.replies, 1)
	assert.Equal(t, "Emergenz entsteht überall!", handler.replies[0])
	assert.Equal(t, []int{40}, handler.scores)
	assert.Empty(t, handler.errors)

	assert.False(t, chat.Busy())
}

func TestChatService_CollaboratorFailure(t *testing.T) {
	client := &mockLLMClient{err: fmt.Errorf("quota exceeded")}
	handler := &recordingHandler{}
	chat, session := newTestChatService(t, client, handler)

	chat.HandleUserSubmit("Hallo?")

	// The user turn stays in history; no assistant turn is appended for
	// the failed attempt, so the next request's context is clean.
	require.Len(t, session.Messages, 2)
	assert.Equal(t, chattypes.RoleUser, session.Messages[1].Role)
	assert.Equal(t, "Hallo?", session.Messages[1].Content)

	require.Len(t, handler.errors, 1)
	assert.Contains(t, handler.errors[0], "quota exceeded")
	assert.Empty(t, handler.replies)

	// The busy flag is released on the failure path too.
	assert.False(t, chat.Busy())
}

func TestChatService_RecoversAfterFailure(t *testing.T) {
	client := &mockLLMClient{err: fmt.Errorf("network down")}
	handler := &recordingHandler{}
	chat, session := newTestChatService(t, client, handler)

	chat.HandleUserSubmit("erste Frage")
	require.Len(t, handler.errors, 1)

	client.err = nil
	client.reply = "Jetzt geht es wieder."
	chat.HandleUserSubmit("zweite Frage")

	require.Len(t, handler.replies, 1)
	assert.Equal(t, "Jetzt geht es wieder.", handler.replies[0])
	// Opener, failed user turn, second user turn, reply.
	assert.Len(t, session.Messages, 4)
}

func TestChatService_IgnoresBlankInput(t *testing.T) {
	client := &mockLLMClient{reply: "unbenutzt"}
	handler := &recordingHandler{}
	chat, session := newTestChatService(t, client, handler)

	chat.HandleUserSubmit("")
	chat.HandleUserSubmit("   \n\t ")

	assert.Len(t, session.Messages, 1) // only the opener
	assert.Equal(t, 0, client.calls)
	assert.Empty(t, handler.replies)
	assert.Empty(t, handler.errors)
}

func TestChatService_RejectsSubmitWhileBusy(t *testing.T) {
	client := &blockingLLMClient{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	handler := &recordingHandler{}
	chat, session := newTestChatService(t, client, handler)

	done := make(chan struct{})
	go func() {
		chat.HandleUserSubmit("lange Frage")
		close(done)
	}()

	select {
	case <-client.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("request never reached the client")
	}
	assert.True(t, chat.Busy())

	// A submit while the request is in flight is ignored: no queueing,
	// no extra user turn, no second client call.
	chat.HandleUserSubmit("ungeduldige Frage")
	assert.Equal(t, 1, client.calls)
	assert.Len(t, session.Messages, 2) // opener + first user turn

	close(client.release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("exchange never completed")
	}

	assert.False(t, chat.Busy())
	require.Len(t, handler.replies, 1)
	assert.Equal(t, "fertig", handler.replies[0])
	assert.Len(t, session.Messages, 3)
}
