package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"autojobfinder/internal/logging/types"
)

// adapterSet is shared by a logger and every logger derived from it
type adapterSet struct {
	adapters map[string]types.LogAdapter
	level    LogLevel
	errOut   io.Writer
	mu       sync.RWMutex
}

// MultiLogger fans every entry out to a set of adapters
type MultiLogger struct {
	shared  *adapterSet
	context context.Context
	fields  map[string]interface{}
}

// NewMultiLogger creates a logger with no adapters at InfoLevel
func NewMultiLogger() *MultiLogger {
	return &MultiLogger{
		shared: &adapterSet{
			adapters: make(map[string]types.LogAdapter),
			level:    InfoLevel,
			errOut:   os.Stderr,
		},
		context: context.Background(),
		fields:  make(map[string]interface{}),
	}
}

func (l *MultiLogger) Debug(message string, fields ...map[string]interface{}) {
	l.Log(DebugLevel, message, fields...)
}

func (l *MultiLogger) Info(message string, fields ...map[string]interface{}) {
	l.Log(InfoLevel, message, fields...)
}

func (l *MultiLogger) Warn(message string, fields ...map[string]interface{}) {
	l.Log(WarnLevel, message, fields...)
}

func (l *MultiLogger) Error(message string, fields ...map[string]interface{}) {
	l.Log(ErrorLevel, message, fields...)
}

// Fatal logs, flushes every adapter and exits
func (l *MultiLogger) Fatal(message string, fields ...map[string]interface{}) {
	l.Log(FatalLevel, message, fields...)
	l.Close()
	os.Exit(1)
}

// Log writes a message to every adapter when level is enabled
func (l *MultiLogger) Log(level LogLevel, message string, fields ...map[string]interface{}) {
	l.shared.mu.RLock()
	defer l.shared.mu.RUnlock()

	if level < l.shared.level {
		return
	}

	entry := &types.LogEntry{
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
		Context:   l.context,
		Fields:    l.mergeFields(fields...),
	}

	for _, name := range l.adapterNames() {
		if err := l.shared.adapters[name].Write(entry); err != nil {
			// stderr, never back into the logger
			fmt.Fprintf(l.shared.errOut, "logging adapter %s error: %v\n", name, err)
		}
	}
}

func (l *MultiLogger) WithContext(ctx context.Context) Logger {
	return &MultiLogger{shared: l.shared, context: ctx, fields: l.copyFields()}
}

func (l *MultiLogger) WithField(key string, value interface{}) Logger {
	fields := l.copyFields()
	fields[key] = value
	return &MultiLogger{shared: l.shared, context: l.context, fields: fields}
}

func (l *MultiLogger) WithFields(fields map[string]interface{}) Logger {
	merged := l.copyFields()
	for k, v := range fields {
		merged[k] = v
	}
	return &MultiLogger{shared: l.shared, context: l.context, fields: merged}
}

// SetLevel sets the minimum level for this logger and all derived loggers
func (l *MultiLogger) SetLevel(level LogLevel) {
	l.shared.mu.Lock()
	defer l.shared.mu.Unlock()
	l.shared.level = level
}

func (l *MultiLogger) GetLevel() LogLevel {
	l.shared.mu.RLock()
	defer l.shared.mu.RUnlock()
	return l.shared.level
}

func (l *MultiLogger) AddAdapter(adapter types.LogAdapter) error {
	l.shared.mu.Lock()
	defer l.shared.mu.Unlock()

	name := adapter.Name()
	if _, exists := l.shared.adapters[name]; exists {
		return fmt.Errorf("adapter %s already exists", name)
	}
	l.shared.adapters[name] = adapter
	return nil
}

func (l *MultiLogger) RemoveAdapter(adapterName string) error {
	l.shared.mu.Lock()
	defer l.shared.mu.Unlock()

	adapter, exists := l.shared.adapters[adapterName]
	if !exists {
		return fmt.Errorf("adapter %s not found", adapterName)
	}
	delete(l.shared.adapters, adapterName)

	if err := adapter.Close(); err != nil {
		return fmt.Errorf("failed to close adapter %s: %w", adapterName, err)
	}
	return nil
}

// Close closes and detaches all adapters
func (l *MultiLogger) Close() error {
	l.shared.mu.Lock()
	defer l.shared.mu.Unlock()

	var failures []string
	for name, adapter := range l.shared.adapters {
		if err := adapter.Close(); err != nil {
			failures = append(failures, fmt.Sprintf("adapter %s: %v", name, err))
		}
		delete(l.shared.adapters, name)
	}

	if len(failures) > 0 {
		sort.Strings(failures)
		return fmt.Errorf("failed to close adapters: %s", strings.Join(failures, ", "))
	}
	return nil
}

// adapterNames must be called with the read lock held
func (l *MultiLogger) adapterNames() []string {
	names := make([]string, 0, len(l.shared.adapters))
	for name := range l.shared.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *MultiLogger) copyFields() map[string]interface{} {
	fields := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	return fields
}

func (l *MultiLogger) mergeFields(additional ...map[string]interface{}) map[string]interface{} {
	fields := l.copyFields()
	for _, fieldMap := range additional {
		for k, v := range fieldMap {
			fields[k] = v
		}
	}
	return fields
}
