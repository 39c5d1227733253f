/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: formatter.go
Description: Custom log formatters for the MIC validator. Renders timestamp,
level, caller and sorted structured fields, with an optional validator prefix
derived from the message.
*/

package logging

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CustomFormatter renders human-readable single-line log entries
type CustomFormatter struct {
	Timestamp bool
	Caller    bool
	Colors    bool
}

// Format formats a log entry
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return f.format(entry, ""), nil
}

func (f *CustomFormatter) format(entry *logrus.Entry, prefix string) []byte {
	var output strings.Builder

	if f.Timestamp {
		f.write(&output, 36, entry.Time.Format("2006-01-02 15:04:05.000"))
	}

	levelText := strings.ToUpper(entry.Level.String())
	f.write(&output, f.getLevelColor(entry.Level), levelText)

	if prefix != "" {
		f.write(&output, 35, "["+prefix+"]")
	}

	if f.Caller && entry.HasCaller() {
		f.write(&output, 33, fmt.Sprintf("[%s:%d]", entry.Caller.File, entry.Caller.Line))
	}

	output.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		output.WriteString(" ")
		output.WriteString(f.formatFields(entry.Data))
	}

	output.WriteString("\n")
	return []byte(output.String())
}

// write appends a space-terminated token, colored when enabled
func (f *CustomFormatter) write(b *strings.Builder, color int, s string) {
	if f.Colors {
		fmt.Fprintf(b, "\033[%dm%s\033[0m ", color, s)
		return
	}
	b.WriteString(s)
	b.WriteString(" ")
}

// getLevelColor returns the ANSI color code for a log level
func (f *CustomFormatter) getLevelColor(level logrus.Level) int {
	switch level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return 37 // White
	case logrus.InfoLevel:
		return 32 // Green
	case logrus.WarnLevel:
		return 33 // Yellow
	case logrus.ErrorLevel:
		return 31 // Red
	default:
		return 35 // Magenta
	}
}

// formatFields renders fields sorted by key
func (f *CustomFormatter) formatFields(fields logrus.Fields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value := f.formatValue(fields[key])
		if f.Colors {
			parts = append(parts, fmt.Sprintf("\033[34m%s\033[0m=\033[32m%s\033[0m", key, value))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%s", key, value))
		}
	}
	return strings.Join(parts, " ")
}

// formatValue formats a field value appropriately
func (f *CustomFormatter) formatValue(value interface{}) string {
	switch v := value.(type) {
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format("15:04:05.000")
	case float64:
		return fmt.Sprintf("%.4g", v)
	case string:
		if len(v) > 50 {
			return v[:50] + "..."
		}
		return v
	case error:
		return v.Error()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ValidationFormatter prefixes validator events with a short tag
type ValidationFormatter struct {
	CustomFormatter
}

// Format formats a log entry with its validator prefix
func (f *ValidationFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return f.format(entry, messagePrefix(entry.Message)), nil
}

// messagePrefix returns the tag for a log message
func messagePrefix(message string) string {
	switch {
	case strings.HasPrefix(message, "Comparison rejected"):
		return "REJECT"
	case strings.HasPrefix(message, "Comparison"):
		return "COMPARE"
	case strings.HasPrefix(message, "Breakpoints"):
		return "BREAKPOINTS"
	case strings.HasPrefix(message, "Export"):
		return "EXPORT"
	case strings.HasPrefix(message, "Plot"):
		return "PLOT"
	case strings.HasPrefix(message, "Statistics"), strings.HasPrefix(message, "Validation metrics"):
		return "STATS"
	default:
		return ""
	}
}
