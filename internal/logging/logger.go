// Package logging provides subsystem-tagged logging shared by every
// component of the organism core.
package logging

import (
	"log"
	"os"
	"strings"
)

var debugEnabled = os.Getenv("ORGANISM_DEBUG") == "true"

// Info logs an informational message. Always shown.
func Info(subsystem, format string, args ...any) {
	log.Printf("[%s] "+format, append([]any{subsystem}, args...)...)
}

// Warn logs a warning. Always shown.
func Warn(subsystem, format string, args ...any) {
	log.Printf("[%s] WARN "+format, append([]any{subsystem}, args...)...)
}

// Error logs an internal error. Errors logged here are, per the core's
// failure semantics, isolated to their originating component and never
// propagated into a panic.
func Error(subsystem, format string, args ...any) {
	log.Printf("[%s] ERROR "+format, append([]any{subsystem}, args...)...)
}

// Debug logs a debug message, shown only when ORGANISM_DEBUG=true.
func Debug(subsystem, format string, args ...any) {
	if debugEnabled {
		log.Printf("[%s] "+format, append([]any{subsystem}, args...)...)
	}
}

// Truncate shortens s to maxLen runes for one-line log output.
func Truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
