package adapters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"autojobfinder/internal/logging/types"
)

const textTimeLayout = "2006-01-02 15:04:05"

const (
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
	colorGreen  = "\033[32m"
	colorReset  = "\033[0m"
)

// formatEntry renders an entry as a single line in the given format ("json" or "text")
func formatEntry(entry *types.LogEntry, format string, colorized bool) (string, error) {
	if strings.EqualFold(format, "json") {
		return formatJSON(entry)
	}
	return formatText(entry, colorized), nil
}

func formatJSON(entry *types.LogEntry) (string, error) {
	logData := map[string]interface{}{
		"level":   entry.Level.String(),
		"message": entry.Message,
		"time":    entry.Timestamp.Format(time.RFC3339),
	}
	for k, v := range entry.Fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		logData[k] = v
	}

	data, err := json.Marshal(logData)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formatText renders "2006-01-02 15:04:05 | INFO     | message key=value ..."
func formatText(entry *types.LogEntry, colorized bool) string {
	timestamp := entry.Timestamp.Format(textTimeLayout)
	level := fmt.Sprintf("%-8s", strings.ToUpper(entry.Level.String()))

	if colorized {
		timestamp = colorGreen + timestamp + colorReset
		level = colorizeLevel(entry.Level, level)
	}

	var b strings.Builder
	b.WriteString(timestamp)
	b.WriteString(" | ")
	b.WriteString(level)
	b.WriteString(" | ")
	b.WriteString(entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
		}
	}

	return b.String()
}

func colorizeLevel(level types.LogLevel, text string) string {
	switch level {
	case types.DebugLevel:
		return colorGray + text + colorReset
	case types.InfoLevel:
		return colorBlue + text + colorReset
	case types.WarnLevel:
		return colorYellow + text + colorReset
	default:
		return colorRed + text + colorReset
	}
}
