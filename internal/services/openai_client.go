package services

import (
	"context"
	"fmt"
	"net/http"

	"emergenzchat/internal/logger"
	"emergenzchat/pkg/chattypes"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements the LLMClient interface for OpenAI's API.
// It provides lazy initialization of the OpenAI client and handles
// all OpenAI-specific communication logic.
type OpenAIClient struct {
	apiKey         string
	client         *openai.Client
	debugTransport http.RoundTripper
}

// NewOpenAIClient creates a new OpenAI client with lazy initialization.
// The actual OpenAI client is created only when the first request is made.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey: apiKey,
		client: nil, // Will be initialized lazily
	}
}

// GetProviderName returns the provider name for this client.
func (c *OpenAIClient) GetProviderName() string {
	return "openai"
}

// IsConfigured returns true if the client has a valid API key.
func (c *OpenAIClient) IsConfigured() bool {
	return c.apiKey != ""
}

// SetDebugTransport sets the HTTP transport for network debugging.
func (c *OpenAIClient) SetDebugTransport(transport http.RoundTripper) {
	c.debugTransport = transport
	// Clear the existing client to force re-initialization with debug transport
	c.client = nil
}

// initializeClientIfNeeded initializes the OpenAI client if it hasn't been initialized yet.
func (c *OpenAIClient) initializeClientIfNeeded() error {
	if c.client != nil {
		return nil // Already initialized
	}

	if c.apiKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}

	var options []option.RequestOption
	options = append(options, option.WithAPIKey(c.apiKey))

	if c.debugTransport != nil {
		options = append(options, option.WithHTTPClient(&http.Client{Transport: c.debugTransport}))
		logger.Debug("OpenAI client initialized with debug transport", "provider", "openai")
	} else {
		logger.Debug("OpenAI client initialized", "provider", "openai")
	}

	client := openai.NewClient(options...)
	c.client = &client

	return nil
}

// SendChatCompletion sends the session's full history to OpenAI and returns
// the reply text.
func (c *OpenAIClient) SendChatCompletion(session *chattypes.ChatSession, modelConfig *chattypes.ModelConfig) (string, error) {
	logger.Debug("OpenAI SendChatCompletion starting", "model", modelConfig.BaseModel)

	if err := c.initializeClientIfNeeded(); err != nil {
		return "", fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}

	messages := c.convertMessagesToOpenAI(session)
	logger.Debug("Messages converted", "message_count", len(messages))

	// OpenAI carries the system prompt as a leading system message
	if session.SystemPrompt != "" {
		systemMsg := openai.SystemMessage(session.SystemPrompt)
		messages = append([]openai.ChatCompletionMessageParamUnion{systemMsg}, messages...)
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelConfig.BaseModel),
		Messages: messages,
	}
	c.applyModelParameters(&params, modelConfig)

	completion, err := c.client.Chat.Completions.New(context.Background(), params)
	if err != nil {
		logger.Error("OpenAI request failed", "error", err)
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		logger.Error("No response choices returned")
		return "", fmt.Errorf("no response choices returned")
	}

	content := completion.Choices[0].Message.Content
	if content == "" {
		logger.Error("Empty response content")
		return "", fmt.Errorf("empty response content")
	}

	logger.Debug("OpenAI response received", "content_length", len(content))
	return content, nil
}

// convertMessagesToOpenAI converts the session history to OpenAI format, preserving order.
func (c *OpenAIClient) convertMessagesToOpenAI(session *chattypes.ChatSession) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(session.Messages))

	for _, msg := range session.Messages {
		switch msg.Role {
		case chattypes.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case chattypes.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			// Skip unknown roles
			continue
		}
	}

	return messages
}

// applyModelParameters applies model configuration parameters to the OpenAI request.
func (c *OpenAIClient) applyModelParameters(params *openai.ChatCompletionNewParams, modelConfig *chattypes.ModelConfig) {
	if modelConfig.Parameters == nil {
		return
	}

	if temp, ok := modelConfig.Parameters["temperature"]; ok {
		if tempFloat, ok := temp.(float64); ok {
			params.Temperature = openai.Float(tempFloat)
		}
	}

	if topP, ok := modelConfig.Parameters["top_p"]; ok {
		if topPFloat, ok := topP.(float64); ok {
			params.TopP = openai.Float(topPFloat)
		}
	}

	if maxTokens, ok := modelConfig.Parameters["max_tokens"]; ok {
		if maxTokensInt, ok := maxTokens.(int); ok {
			params.MaxTokens = openai.Int(int64(maxTokensInt))
		}
	}
}
