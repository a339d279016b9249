package services

import (
	"fmt"
	"os"
	"strings"

	"emergenzchat/internal/logger"
	"emergenzchat/pkg/chattypes"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Provider-specific API key environment variables.
var providerAPIKeyEnv = map[string]string{
	"gemini": "GEMINI_API_KEY",
	"openai": "OPENAI_API_KEY",
}

// Default models per provider.
var providerDefaultModel = map[string]string{
	"gemini": "gemini-2.0-flash",
	"openai": "gpt-4o-mini",
}

// ConfigService resolves runtime configuration with flag > environment >
// default precedence. Flags are bound into viper by the CLI entry point;
// environment variables may come from the process or a .env file.
type ConfigService struct {
	initialized bool
}

// NewConfigService creates a new ConfigService instance.
func NewConfigService() *ConfigService {
	return &ConfigService{initialized: false}
}

// Name returns the service name "config" for registration.
func (c *ConfigService) Name() string {
	return "config"
}

// Initialize loads a .env file from the working directory when present and
// marks the service ready. A missing .env file is not an error.
func (c *ConfigService) Initialize() error {
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded .env file")
	}
	c.initialized = true
	return nil
}

// Provider returns the configured provider name, defaulting to "gemini".
func (c *ConfigService) Provider() string {
	if provider := viper.GetString("provider"); provider != "" {
		return strings.ToLower(provider)
	}
	if provider := os.Getenv("EMERGENZ_PROVIDER"); provider != "" {
		return strings.ToLower(provider)
	}
	return "gemini"
}

// Model returns the configured model name for the given provider.
func (c *ConfigService) Model(provider string) string {
	if model := viper.GetString("model"); model != "" {
		return model
	}
	if model := os.Getenv("EMERGENZ_MODEL"); model != "" {
		return model
	}
	return providerDefaultModel[provider]
}

// APIKeyForProvider returns the API key for the given provider from its
// provider-specific environment variable.
func (c *ConfigService) APIKeyForProvider(provider string) (string, error) {
	envVar, ok := providerAPIKeyEnv[provider]
	if !ok {
		return "", fmt.Errorf("unsupported provider '%s'", provider)
	}

	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return "", fmt.Errorf("%s not set", envVar)
	}
	return apiKey, nil
}

// ModelConfig assembles the model configuration for the given provider,
// including the fixed generation parameters used for every request.
func (c *ConfigService) ModelConfig(provider string) *chattypes.ModelConfig {
	return &chattypes.ModelConfig{
		Provider:  provider,
		BaseModel: c.Model(provider),
		Parameters: map[string]interface{}{
			"temperature": 0.9,
			"top_p":       0.95,
			"top_k":       40,
			"max_tokens":  1024,
		},
	}
}
