// Package logger provides centralized logging functionality for EmergenzChat.
// It configures structured logging with support for different output formats and log levels.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the global logger instance used throughout EmergenzChat.
var Logger *log.Logger

func init() {
	Logger = log.New(os.Stderr)
	Logger.SetTimeFormat("")
	Logger.SetLevel(log.InfoLevel)
}

// Configure sets up the logger based on CLI flags and environment variables.
// CLI flags take precedence over environment variables.
func Configure(logLevel string, logFile string) error {
	// Set log level with precedence: CLI flag > env var > default
	level := logLevel
	if level == "" {
		level = strings.ToLower(os.Getenv("EMERGENZ_LOG_LEVEL"))
	}
	if level == "" {
		level = "info"
	}

	// Set log output destination. While the TUI is running, stderr is
	// occupied by the terminal renderer, so a log file is the usual choice.
	var output io.Writer = os.Stderr
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return err
		}
		output = file
	}

	Logger = log.New(output)
	Logger.SetTimeFormat("")
	Logger.SetLevel(parseLogLevel(level))

	return nil
}

// parseLogLevel converts string to log level
func parseLogLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg interface{}, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg interface{}, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg interface{}, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}

// Fatal logs a fatal message with optional key-value pairs and exits.
func Fatal(msg interface{}, keyvals ...interface{}) {
	Logger.Fatal(msg, keyvals...)
}

// ServiceOperation logs service operation details for debugging.
func ServiceOperation(service string, operation string, details ...interface{}) {
	Debug("Service operation", "service", service, "operation", operation, "details", details)
}
