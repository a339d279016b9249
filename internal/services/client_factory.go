package services

import (
	"fmt"
	"sync"

	"emergenzchat/internal/logger"
	"emergenzchat/pkg/chattypes"
)

// ClientFactory manages the creation and caching of LLM clients.
// Clients are cached per provider and API key, so repeated lookups
// reuse the same lazily initialized client.
type ClientFactory struct {
	initialized bool
	clients     map[string]chattypes.LLMClient
	mutex       sync.RWMutex
}

// NewClientFactory creates a new ClientFactory instance.
func NewClientFactory() *ClientFactory {
	return &ClientFactory{
		initialized: false,
		clients:     make(map[string]chattypes.LLMClient),
	}
}

// Name returns the service name "client_factory" for registration.
func (f *ClientFactory) Name() string {
	return "client_factory"
}

// Initialize sets up the ClientFactory for operation.
func (f *ClientFactory) Initialize() error {
	logger.ServiceOperation("client_factory", "initialize", "completed")
	f.initialized = true
	return nil
}

// GetClientForProvider returns an LLM client for the specified provider and API key.
func (f *ClientFactory) GetClientForProvider(provider, apiKey string) (chattypes.LLMClient, error) {
	if !f.initialized {
		return nil, fmt.Errorf("client factory not initialized")
	}

	if provider == "" {
		return nil, fmt.Errorf("provider cannot be empty")
	}

	if apiKey == "" {
		return nil, fmt.Errorf("API key cannot be empty for provider '%s'", provider)
	}

	cacheKey := fmt.Sprintf("%s:%s", provider, apiKey)

	f.mutex.RLock()
	if client, exists := f.clients[cacheKey]; exists {
		f.mutex.RUnlock()
		logger.Debug("Returning cached provider client", "provider", provider)
		return client, nil
	}
	f.mutex.RUnlock()

	f.mutex.Lock()
	defer f.mutex.Unlock()

	// Double-check pattern
	if client, exists := f.clients[cacheKey]; exists {
		return client, nil
	}

	var client chattypes.LLMClient
	switch provider {
	case "gemini":
		client = NewGeminiClient(apiKey)
	case "openai":
		client = NewOpenAIClient(apiKey)
	default:
		return nil, fmt.Errorf("unsupported provider '%s'. Supported providers: gemini, openai", provider)
	}

	f.clients[cacheKey] = client

	logger.Debug("Created new provider client", "provider", provider)
	return client, nil
}
