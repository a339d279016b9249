// Package chattypes defines the shared types for EmergenzChat.
// This file contains the core types for conversation history and
// chat sessions with the language model.
package chattypes

import "time"

// Message roles used throughout the conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single turn in the conversation history.
// Messages track the role (user/assistant), content, and timestamp.
// A message is immutable once appended; ordering is conversation order.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession represents one conversation with the language model.
// It owns the ordered, trimmed message history that is sent as full
// context on every request. Sessions live in memory only and are
// discarded when the process ends.
type ChatSession struct {
	ID           string    `json:"id"`            // Unique session identifier
	Name         string    `json:"name"`          // User-friendly session name
	SystemPrompt string    `json:"system_prompt"` // Persona directive for the model
	Messages     []Message `json:"messages"`      // Ordered conversation history
	CreatedAt    time.Time `json:"created_at"`    // Session creation timestamp
	UpdatedAt    time.Time `json:"updated_at"`    // Last modification timestamp
}
