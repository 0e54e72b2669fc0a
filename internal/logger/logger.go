// Package logger prints progress and diagnostics to stderr. Debug and Info
// output only appears with --verbose; warnings are always shown.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func write(gated bool, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if gated && !verbose {
		return
	}
	fmt.Fprintf(output, prefix+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(true, "[DEBUG] ", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(true, "[INFO] ", format, args...)
}

// Warn prints a warning regardless of verbose mode.
func Warn(format string, args ...any) {
	write(false, "Warning: ", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	write(true, "", "\n=== %s ===", name)
}

// Timed logs how long a step took when the returned func is called.
//
//	defer logger.Timed("scoring")()
func Timed(step string) func() {
	start := time.Now()
	return func() {
		Debug("%s took %s", step, time.Since(start).Round(time.Millisecond))
	}
}
