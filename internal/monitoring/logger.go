// Package monitoring holds the diagnostic loggers shared by the pipeline
// tools.
//
// Two streams exist: Logf for lifecycle events and per-sample outcomes, on by
// default; and Diagf for verbose per-feature dumps, off until a writer is
// attached with SetDiagWriter.
package monitoring

import (
	"io"
	"log"
	"sync"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger so tests can capture or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil sets a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

var (
	mu         sync.RWMutex
	diagLogger *log.Logger
)

// SetDiagWriter attaches w to the diag stream. Pass nil to disable it.
func SetDiagWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		diagLogger = nil
		return
	}
	diagLogger = log.New(w, "[diag] ", log.LstdFlags)
}

// DiagEnabled reports whether the diag stream has a writer.
func DiagEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return diagLogger != nil
}

// Diagf logs to the diag stream when it is enabled.
func Diagf(format string, args ...interface{}) {
	mu.RLock()
	l := diagLogger
	mu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}
