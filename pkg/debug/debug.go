// Package debug provides conditional debug logging for buildline.
//
// Debug logging is switched on with the BUILDLINE_DEBUG environment variable:
//
//	BUILDLINE_DEBUG=1 buildline export html
//
// Messages go to stderr with a timestamp. When disabled every helper returns
// immediately.
package debug

import (
	"io"
	"log"
	"os"
	"time"
)

// EnvVar enables debug output when set to any non-empty value.
const EnvVar = "BUILDLINE_DEBUG"

const prefix = "[BUILDLINE_DEBUG] "

var (
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv(EnvVar) != "" {
		enabled = true
		logger = log.New(os.Stderr, prefix, log.Ltime|log.Lmicroseconds)
	}
}

// Enabled reports whether debug logging is on.
func Enabled() bool {
	return enabled
}

// SetEnabled toggles debug logging at runtime.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, prefix, log.Ltime|log.Lmicroseconds)
	}
}

// SetOutput redirects debug output, mostly for tests.
func SetOutput(w io.Writer) {
	logger = log.New(w, prefix, 0)
}

// Log writes a printf-style message.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming records how long a named step took.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %v", name, d)
}

// LogIf writes the message only when cond holds.
func LogIf(cond bool, format string, args ...any) {
	if !enabled || !cond {
		return
	}
	logger.Printf(format, args...)
}

// LogEnterExit logs entry immediately and exit with elapsed time when the
// returned func runs:
//
//	defer debug.LogEnterExit("timeline.Build")()
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Printf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value with its dynamic type.
func Dump(name string, v any) {
	if !enabled {
		return
	}
	logger.Printf("%s: %T = %+v", name, v, v)
}
