package logging

import (
	"fmt"
	"sync"

	"autojobfinder/internal/config"
)

const megabyte = 1024 * 1024

// Manager builds the adapters described by the logging section
type Manager struct {
	factory *AdapterFactory
	logger  *MultiLogger
}

// NewManager creates a new logging manager
func NewManager() *Manager {
	return &Manager{
		factory: NewAdapterFactory(),
		logger:  NewMultiLogger(),
	}
}

// Initialize sets the level and attaches the console and file adapters
func (m *Manager) Initialize(cfg *config.Config) error {
	m.logger.SetLevel(ParseLogLevel(cfg.Logging.Level))

	var adapterConfigs []AdapterConfig
	if cfg.Logging.Console {
		adapterConfigs = append(adapterConfigs, AdapterConfig{
			Name: "console",
			Type: "console",
			Options: map[string]interface{}{
				"format":    cfg.Logging.Format,
				"colorized": cfg.Logging.Format != "json",
			},
		})
	}
	adapterConfigs = append(adapterConfigs, AdapterConfig{
		Name: "file",
		Type: "file",
		Options: map[string]interface{}{
			"file_path":   cfg.Logging.FilePath,
			"format":      cfg.Logging.Format,
			"max_size":    int64(cfg.Logging.MaxFileSize) * megabyte,
			"max_backups": cfg.Logging.BackupCount,
			"compress":    true,
		},
	})

	for _, adapterConfig := range adapterConfigs {
		adapter, err := m.factory.CreateAdapter(adapterConfig)
		if err != nil {
			return fmt.Errorf("failed to create adapter %s: %w", adapterConfig.Name, err)
		}
		if err := m.logger.AddAdapter(adapter); err != nil {
			return fmt.Errorf("failed to add adapter %s: %w", adapterConfig.Name, err)
		}
	}

	m.logger.Info("Logger initialized", map[string]interface{}{
		"file":  cfg.Logging.FilePath,
		"level": m.logger.GetLevel().String(),
	})
	return nil
}

// GetLogger returns the initialized logger
func (m *Manager) GetLogger() Logger {
	return m.logger
}

// Close closes the logging system
func (m *Manager) Close() error {
	return m.logger.Close()
}

var (
	globalManager *Manager
	globalMu      sync.Mutex
)

// InitializeLogging initializes the process-wide logger. Calling it again
// closes the previous adapters first.
func InitializeLogging(cfg *config.Config) error {
	manager := NewManager()
	if err := manager.Initialize(cfg); err != nil {
		manager.Close()
		return err
	}

	globalMu.Lock()
	previous := globalManager
	globalManager = manager
	globalMu.Unlock()

	if previous != nil {
		return previous.Close()
	}
	return nil
}

// GetGlobalLogger returns the process-wide logger, or a console-only
// fallback before InitializeLogging has run
func GetGlobalLogger() Logger {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		manager := NewManager()
		manager.logger.AddAdapter(manager.factory.createConsoleAdapter(AdapterConfig{
			Name: "fallback_console",
			Type: "console",
		}))
		globalManager = manager
	}
	return globalManager.GetLogger()
}

// CloseLogging closes the global logging system
func CloseLogging() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		return nil
	}
	err := globalManager.Close()
	globalManager = nil
	return err
}
