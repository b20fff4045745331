package jspage

import (
	"fmt"
	"time"
)

// Config defines page configuration
type Config struct {
	Timeout       time.Duration // Per-evaluation timeout
	EnableConsole bool          // Capture console.log/warn/error
	HostFunc      string        // Global name of the native outbound function
	Receiver      string        // Expression evaluating to the inbound function
	MaxStackSize  int           // Call stack limit
}

// LogEntry represents console output
type LogEntry struct {
	Level   string    // log, info, warn, error
	Message string    // Log message
	Time    time.Time // Timestamp
}

// ScriptError is a JavaScript exception or rejection surfaced to Go.
type ScriptError struct {
	Code    string
	Message string
}

func (e *ScriptError) Error() string {
	if e.Code == "" {
		return "script: " + e.Message
	}
	return fmt.Sprintf("script: %s: %s", e.Code, e.Message)
}

// DefaultConfig returns the configuration used for bridge pages.
func DefaultConfig() Config {
	return Config{
		Timeout:       5 * time.Second,
		EnableConsole: true,
		HostFunc:      "__hostPostMessage",
		Receiver:      "window.bridge.receive",
		MaxStackSize:  1024,
	}
}
