package adapters

import (
	"fmt"
	"io"
	"os"
	"sync"

	"autojobfinder/internal/logging/types"
)

// ConsoleConfig represents configuration for the console adapter
type ConsoleConfig struct {
	Format    string    // json or text
	Colorized bool      // ANSI colors on level and timestamp
	Output    io.Writer // defaults to os.Stdout
}

// ConsoleAdapter writes entries to a terminal stream
type ConsoleAdapter struct {
	name   string
	config ConsoleConfig
	mu     sync.Mutex
}

// NewConsoleAdapter creates a new console adapter
func NewConsoleAdapter(name string, config ConsoleConfig) *ConsoleAdapter {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Format == "" {
		config.Format = "text"
	}
	return &ConsoleAdapter{name: name, config: config}
}

func (a *ConsoleAdapter) Write(entry *types.LogEntry) error {
	output, err := formatEntry(entry, a.config.Format, a.config.Colorized)
	if err != nil {
		return fmt.Errorf("failed to format log entry: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	_, err = fmt.Fprintln(a.config.Output, output)
	return err
}

// Close is a no-op; the stream belongs to the caller
func (a *ConsoleAdapter) Close() error {
	return nil
}

func (a *ConsoleAdapter) Name() string {
	return a.name
}
