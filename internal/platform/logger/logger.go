// Package logger provides the process-wide logger. The analyzer logs batch
// progress and per-event skips here rather than in the run summary.
package logger

import (
	"log"
	"os"
)

// New returns a basic stdout logger; swap in structured logging when needed.
func New() *log.Logger {
	return log.New(os.Stdout, "hashlookup ", log.LstdFlags)
}
