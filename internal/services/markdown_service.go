package services

import (
	"fmt"
	"strings"

	"emergenzchat/internal/logger"

	"github.com/charmbracelet/glamour"
)

// MarkdownService renders assistant replies as terminal markdown using Glamour.
type MarkdownService struct {
	initialized bool
	renderer    *glamour.TermRenderer
}

// NewMarkdownService creates a new MarkdownService instance.
func NewMarkdownService() *MarkdownService {
	return &MarkdownService{
		initialized: false,
		renderer:    nil,
	}
}

// Name returns the service name "markdown" for registration.
func (m *MarkdownService) Name() string {
	return "markdown"
}

// Initialize sets up the MarkdownService with auto-style detection.
func (m *MarkdownService) Initialize() error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	m.renderer = renderer
	m.initialized = true

	logger.Debug("MarkdownService initialized successfully")
	return nil
}

// SetWordWrap rebuilds the renderer with the given wrap width. The TUI calls
// this on terminal resize.
func (m *MarkdownService) SetWordWrap(width int) error {
	if width <= 0 {
		return fmt.Errorf("word wrap width must be positive, got %d", width)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("failed to rebuild markdown renderer: %w", err)
	}

	m.renderer = renderer
	return nil
}

// Render renders markdown content to ANSI terminal output. Callers should
// fall back to the raw text when rendering fails.
func (m *MarkdownService) Render(markdown string) (string, error) {
	if !m.initialized {
		return "", fmt.Errorf("markdown service not initialized")
	}

	if strings.TrimSpace(markdown) == "" {
		return "", fmt.Errorf("markdown content cannot be empty")
	}

	rendered, err := m.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	return strings.TrimRight(rendered, "\n"), nil
}
