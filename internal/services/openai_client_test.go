package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emergenzchat/pkg/chattypes"
)

func TestNewOpenAIClient(t *testing.T) {
	client := NewOpenAIClient("test-api-key")

	assert.Equal(t, "test-api-key", client.apiKey)
	// Lazy initialization: no underlying client until the first request.
	assert.Nil(t, client.client)
}

func TestOpenAIClient_GetProviderName(t *testing.T) {
	assert.Equal(t, "openai", NewOpenAIClient("test-api-key").GetProviderName())
}

func TestOpenAIClient_IsConfigured(t *testing.T) {
	assert.True(t, NewOpenAIClient("test-api-key").IsConfigured())
	assert.False(t, NewOpenAIClient("").IsConfigured())
}

func TestOpenAIClient_SendChatCompletion_NotConfigured(t *testing.T) {
	client := NewOpenAIClient("")

	_, err := client.SendChatCompletion(&chattypes.ChatSession{}, &chattypes.ModelConfig{BaseModel: "gpt-4o-mini"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not configured")
}

func TestOpenAIClient_ConvertMessagesToOpenAI(t *testing.T) {
	client := NewOpenAIClient("test-api-key")
	session := &chattypes.ChatSession{
		Messages: []chattypes.Message{
			{Role: chattypes.RoleAssistant, Content: "Weißt du eigentlich, was Emergenz bedeutet?"},
			{Role: chattypes.RoleUser, Content: "Erzähl mir mehr."},
			{Role: "tool", Content: "should be skipped"},
		},
	}

	messages := client.convertMessagesToOpenAI(session)

	// Unknown roles are skipped, known roles preserved in order.
	assert.Len(t, messages, 2)
}
