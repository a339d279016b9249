// Package main provides the EmergenzChat CLI application entry point.
// EmergenzChat is a terminal chat client that talks to a conversational AI
// model and scores each reply for signs of emergence.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"emergenzchat/internal/logger"
	"emergenzchat/internal/services"
	"emergenzchat/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	logLevel string
	logFile  string
	provider string
	model    string
	version  = "0.1.0" // This could be set at build time
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "emergenz",
	Short: "EmergenzChat - ein Chat über Emergenz",
	Long: `EmergenzChat is a terminal chat client around a conversational AI model.
It keeps a rolling conversation history and flashes an indicator whenever a
reply scores high on emergence-related keywords.`,
	Run: runChat,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("EmergenzChat v%s\n", version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "Model provider (gemini|openai) [default: gemini]")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Model name [default: provider-specific]")

	for _, flag := range []string{"log-level", "log-file", "provider", "model"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", flag, err)
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(versionCmd)

	// Configure logger before any command execution
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if err := logger.Configure(logLevel, logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

func runChat(_ *cobra.Command, _ []string) {
	logger.Info("Starting EmergenzChat", "version", version)

	config := services.NewConfigService()
	if err := config.Initialize(); err != nil {
		logger.Fatal("Failed to initialize configuration", "error", err)
	}

	providerName := config.Provider()
	apiKey, err := config.APIKeyForProvider(providerName)
	if err != nil {
		logger.Fatal("Missing API key", "provider", providerName, "error", err)
	}

	factory := services.NewClientFactory()
	if err := factory.Initialize(); err != nil {
		logger.Fatal("Failed to initialize client factory", "error", err)
	}
	client, err := factory.GetClientForProvider(providerName, apiKey)
	if err != nil {
		logger.Fatal("Failed to create LLM client", "provider", providerName, "error", err)
	}

	sessions := services.NewSessionService()
	if err := sessions.Initialize(); err != nil {
		logger.Fatal("Failed to initialize session service", "error", err)
	}
	session, err := sessions.CreateSession("emergenz", services.DefaultSystemPrompt, services.DefaultOpeningMessage)
	if err != nil {
		logger.Fatal("Failed to create session", "error", err)
	}

	scorer := services.NewScorerService()
	if err := scorer.Initialize(); err != nil {
		logger.Fatal("Failed to initialize scorer", "error", err)
	}

	markdown := services.NewMarkdownService()
	if err := markdown.Initialize(); err != nil {
		logger.Fatal("Failed to initialize markdown renderer", "error", err)
	}

	relay := ui.NewEventRelay()
	chat := services.NewChatService(session, sessions, scorer, client, config.ModelConfig(providerName), relay)
	if err := chat.Initialize(); err != nil {
		logger.Fatal("Failed to initialize chat service", "error", err)
	}

	logger.Info("Services initialized successfully", "provider", providerName, "model", config.Model(providerName))

	program := tea.NewProgram(
		ui.NewModel(chat, markdown, relay),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		logger.Fatal("Chat interface failed", "error", err)
	}
}
