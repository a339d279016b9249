// Package chattypes defines the shared types for EmergenzChat.
// This file contains the LLM client abstraction and model configuration.
package chattypes

// ModelConfig describes the model and its fixed generation parameters.
// Parameters hold provider-agnostic keys (temperature, top_p, top_k,
// max_tokens) that each client maps onto its own request format.
type ModelConfig struct {
	Provider   string                 `json:"provider"`
	BaseModel  string                 `json:"base_model"`
	Parameters map[string]interface{} `json:"parameters"`
}

// LLMClient defines the interface for language model provider implementations.
// This interface abstracts different providers (Gemini, OpenAI) and provides
// a common way to send the full conversation history per request.
type LLMClient interface {
	// SendChatCompletion sends the session's full history and returns the reply text.
	SendChatCompletion(session *ChatSession, model *ModelConfig) (string, error)

	// GetProviderName returns the name of the provider (e.g. "gemini", "openai").
	GetProviderName() string

	// IsConfigured returns true if the client has valid configuration and can make requests.
	IsConfigured() bool
}

// EventHandler receives the outcomes of a conversation exchange.
// Implementations render turns and errors; the core never touches a UI.
type EventHandler interface {
	// OnAssistantTurnReady is called after a successful exchange with the
	// reply text and its emergence score.
	OnAssistantTurnReady(text string, score int)

	// OnError is called with a human-readable message when the model call
	// fails. The failed exchange is not part of the model-bound history.
	OnError(message string)
}
