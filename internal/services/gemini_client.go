package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"emergenzchat/internal/logger"
	"emergenzchat/pkg/chattypes"

	"google.golang.org/genai"
)

// GeminiClient implements the LLMClient interface for the Google Gemini API.
// It provides lazy initialization of the underlying client and handles all
// Gemini-specific communication logic, including the role translation from
// the internal "assistant" role to Gemini's "model" role.
type GeminiClient struct {
	apiKey         string
	client         *genai.Client
	debugTransport http.RoundTripper
}

// NewGeminiClient creates a new Gemini client with lazy initialization.
// The actual Gemini client is created only when the first request is made.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey: apiKey,
		client: nil, // Will be initialized lazily
	}
}

// GetProviderName returns the provider name for this client.
func (c *GeminiClient) GetProviderName() string {
	return "gemini"
}

// IsConfigured returns true if the client has a valid API key.
func (c *GeminiClient) IsConfigured() bool {
	return c.apiKey != ""
}

// SetDebugTransport sets the HTTP transport for network debugging.
func (c *GeminiClient) SetDebugTransport(transport http.RoundTripper) {
	c.debugTransport = transport
	// Clear the existing client to force re-initialization with debug transport
	c.client = nil
}

// initializeClientIfNeeded initializes the Gemini client if it hasn't been initialized yet.
func (c *GeminiClient) initializeClientIfNeeded() error {
	if c.client != nil {
		return nil // Already initialized
	}

	if c.apiKey == "" {
		return fmt.Errorf("google API key not configured")
	}

	ctx := context.Background()
	clientConfig := &genai.ClientConfig{
		APIKey: c.apiKey,
	}

	if c.debugTransport != nil {
		clientConfig.HTTPClient = &http.Client{Transport: c.debugTransport}
		logger.Debug("Gemini client initialized with debug transport", "provider", "gemini")
	} else {
		logger.Debug("Gemini client initialized", "provider", "gemini")
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c.client = client
	return nil
}

// SendChatCompletion sends the session's full history to Google Gemini and
// returns the reply text.
func (c *GeminiClient) SendChatCompletion(session *chattypes.ChatSession, modelConfig *chattypes.ModelConfig) (string, error) {
	logger.Debug("Gemini SendChatCompletion starting", "model", modelConfig.BaseModel)

	if err := c.initializeClientIfNeeded(); err != nil {
		return "", fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	contents := c.convertMessagesToGemini(session)
	logger.Debug("Messages converted", "content_count", len(contents))

	config := c.buildGenerationConfig(modelConfig, session)

	ctx := context.Background()
	result, err := c.client.Models.GenerateContent(
		ctx,
		modelConfig.BaseModel,
		contents,
		config,
	)
	if err != nil {
		logger.Error("Gemini request failed", "error", err)
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	content := c.extractResponseText(result)
	if content == "" {
		logger.Error("No content in Gemini response")
		return "", fmt.Errorf("no content in response")
	}

	logger.Debug("Gemini response received", "content_length", len(content))
	return content, nil
}

// convertMessagesToGemini converts the session history to Gemini format,
// preserving order. Gemini names the assistant role "model".
func (c *GeminiClient) convertMessagesToGemini(session *chattypes.ChatSession) []*genai.Content {
	contents := make([]*genai.Content, 0, len(session.Messages))

	for _, msg := range session.Messages {
		var role string
		switch msg.Role {
		case chattypes.RoleUser:
			role = "user"
		case chattypes.RoleAssistant:
			role = "model" // Gemini uses "model" instead of "assistant"
		default:
			// Skip unknown roles
			continue
		}

		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: msg.Content}},
			Role:  role,
		})
	}

	// Gemini rejects an empty contents list, so fall back to one empty user turn
	if len(contents) == 0 {
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: ""}},
			Role:  "user",
		})
	}

	return contents
}

// buildGenerationConfig creates a Gemini generation config from the model
// parameters and the session's system prompt.
func (c *GeminiClient) buildGenerationConfig(modelConfig *chattypes.ModelConfig, session *chattypes.ChatSession) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	if session.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(session.SystemPrompt, genai.RoleUser)
	}

	if modelConfig.Parameters == nil {
		return config
	}

	if temp, ok := modelConfig.Parameters["temperature"]; ok {
		if tempFloat, ok := temp.(float64); ok {
			tempFloat32 := float32(tempFloat)
			config.Temperature = &tempFloat32
		}
	}

	if topP, ok := modelConfig.Parameters["top_p"]; ok {
		if topPFloat, ok := topP.(float64); ok {
			topPFloat32 := float32(topPFloat)
			config.TopP = &topPFloat32
		}
	}

	if topK, ok := modelConfig.Parameters["top_k"]; ok {
		if topKInt, ok := topK.(int); ok {
			topKFloat32 := float32(topKInt)
			config.TopK = &topKFloat32
		}
	}

	if maxTokens, ok := modelConfig.Parameters["max_tokens"]; ok {
		if maxTokensInt, ok := maxTokens.(int); ok {
			config.MaxOutputTokens = int32(maxTokensInt)
		}
	}

	return config
}

// extractResponseText concatenates the text parts of a Gemini response.
// Thought parts are skipped; only visible text reaches the transcript.
func (c *GeminiClient) extractResponseText(result *genai.GenerateContentResponse) string {
	var contentBuilder strings.Builder

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			if part.Text == "" {
				continue // Skip empty parts
			}
			if part.Thought {
				logger.Debug("Gemini thinking block skipped", "thinking_length", len(part.Text))
				continue
			}
			contentBuilder.WriteString(part.Text)
		}
	}

	return contentBuilder.String()
}
