// Package logging provides colored, leveled log output for the async-demos CLI.
//
// All output functions write a prefixed, color-coded line to stderr so that
// command results on stdout stay machine-readable. Debug output is suppressed
// unless verbose mode is enabled via SetVerbose(true).
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	mu      sync.Mutex
	out     io.Writer = os.Stderr
	verbose bool
)

// Color printers for each log level.
var (
	infoPrefix    = color.New(color.FgBlue).SprintFunc()
	successPrefix = color.New(color.FgGreen).SprintFunc()
	warnPrefix    = color.New(color.FgYellow).SprintFunc()
	errorPrefix   = color.New(color.FgRed).SprintFunc()
	sectionPrefix = color.New(color.FgCyan).SprintFunc()
	debugPrefix   = color.New(color.FgBlue).SprintFunc()
)

// SetVerbose enables or disables Debug output.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// SetOutput redirects all log output to w and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

func writeLine(prefix, msg string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(out, prefix+" "+msg)
}

// Info prints an informational message in blue.
func Info(msg string) {
	writeLine(infoPrefix("[INFO]"), msg)
}

// Success prints a success message in green.
func Success(msg string) {
	writeLine(successPrefix("[SUCCESS]"), msg)
}

// Warn prints a warning message in yellow.
func Warn(msg string) {
	writeLine(warnPrefix("[WARN]"), msg)
}

// Error prints an error message in red.
func Error(msg string) {
	writeLine(errorPrefix("[ERROR]"), msg)
}

// Section prints a header in cyan, surrounded by separator lines.
func Section(msg string) {
	sep := sectionPrefix("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out, sectionPrefix("[DEMO]")+" "+msg)
	fmt.Fprintln(out, sep)
}

// Debug prints a debug message in blue, only when verbose mode is enabled.
func Debug(msg string) {
	mu.Lock()
	v := verbose
	mu.Unlock()
	if !v {
		return
	}
	writeLine(debugPrefix("[DEBUG]"), msg)
}

// FormatDuration renders a duration for humans.
//
// Examples:
//
//	FormatDuration(0)                      => "0ms"
//	FormatDuration(250 * time.Millisecond) => "250ms"
//	FormatDuration(45 * time.Second)       => "45s"
//	FormatDuration(90 * time.Second)       => "1m 30s"
//	FormatDuration(3661 * time.Second)     => "1h 1m 1s"
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	seconds := int(d / time.Second)
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		m := seconds / 60
		s := seconds % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
