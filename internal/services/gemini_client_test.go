package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emergenzchat/pkg/chattypes"
)

func TestNewGeminiClient(t *testing.T) {
	client := NewGeminiClient("test-api-key")

	assert.Equal(t, "test-api-key", client.apiKey)
	// Lazy initialization: no underlying client until the first request.
	assert.Nil(t, client.client)
}

func TestGeminiClient_GetProviderName(t *testing.T) {
	client := NewGeminiClient("test-api-key")
	assert.Equal(t, "gemini", client.GetProviderName())
}

func TestGeminiClient_IsConfigured(t *testing.T) {
	assert.True(t, NewGeminiClient("test-api-key").IsConfigured())
	assert.False(t, NewGeminiClient("").IsConfigured())
}

func TestGeminiClient_SendChatCompletion_NotConfigured(t *testing.T) {
	client := NewGeminiClient("")
	session := &chattypes.ChatSession{}

	_, err := client.SendChatCompletion(session, &chattypes.ModelConfig{BaseModel: "gemini-2.0-flash"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not configured")
}

func TestGeminiClient_ConvertMessagesToGemini(t *testing.T) {
	client := NewGeminiClient("test-api-key")
	session := &chattypes.ChatSession{
		Messages: []chattypes.Message{
			{Role: chattypes.RoleAssistant, Content: "Weißt du eigentlich, was Emergenz bedeutet?"},
			{Role: chattypes.RoleUser, Content: "Ja, total überraschend und emergent!"},
			{Role: "system", Content: "should be skipped"},
			{Role: chattypes.RoleAssistant, Content: "Genau!"},
		},
	}

	contents := client.convertMessagesToGemini(session)

	// Unknown roles are skipped; order is preserved; the assistant role is
	// translated to Gemini's "model".
	require.Len(t, contents, 3)
	assert.Equal(t, "model", contents[0].Role)
	assert.Equal(t, "Weißt du eigentlich, was Emergenz bedeutet?", contents[0].Parts[0].Text)
	assert.Equal(t, "user", contents[1].Role)
	assert.Equal(t, "Ja, total überraschend und emergent!", contents[1].Parts[0].Text)
	assert.Equal(t, "model", contents[2].Role)
}

func TestGeminiClient_ConvertMessagesToGemini_EmptyHistory(t *testing.T) {
	client := NewGeminiClient("test-api-key")
	session := &chattypes.ChatSession{}

	contents := client.convertMessagesToGemini(session)

	// An empty history falls back to a single empty user content.
	require.Len(t, contents, 1)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "", contents[0].Parts[0].Text)
}

func TestGeminiClient_BuildGenerationConfig(t *testing.T) {
	client := NewGeminiClient("test-api-key")
	session := &chattypes.ChatSession{SystemPrompt: DefaultSystemPrompt}
	modelConfig := &chattypes.ModelConfig{
		BaseModel: "gemini-2.0-flash",
		Parameters: map[string]interface{}{
			"temperature": 0.9,
			"top_p":       0.95,
			"top_k":       40,
			"max_tokens":  1024,
		},
	}

	config := client.buildGenerationConfig(modelConfig, session)

	require.NotNil(t, config.SystemInstruction)
	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.9, float64(*config.Temperature), 0.0001)
	require.NotNil(t, config.TopP)
	assert.InDelta(t, 0.95, float64(*config.TopP), 0.0001)
	require.NotNil(t, config.TopK)
	assert.InDelta(t, 40, float64(*config.TopK), 0.0001)
	assert.Equal(t, int32(1024), config.MaxOutputTokens)
}

func TestGeminiClient_BuildGenerationConfig_NoParameters(t *testing.T) {
	client := NewGeminiClient("test-api-key")
	session := &chattypes.ChatSession{}

	config := client.buildGenerationConfig(&chattypes.ModelConfig{BaseModel: "gemini-2.0-flash"}, session)

	assert.Nil(t, config.SystemInstruction)
	assert.Nil(t, config.Temperature)
	assert.Nil(t, config.TopP)
	assert.Nil(t, config.TopK)
}

func TestGeminiClient_SetDebugTransport_ForcesReinitialization(t *testing.T) {
	client := NewGeminiClient("test-api-key")
	client.SetDebugTransport(nil)
	assert.Nil(t, client.client)
}
