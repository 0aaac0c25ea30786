package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DebugLogger provides file-based debug logging for orchestrator
// internals. A logger with no file is a no-op, so call sites never need
// a nil check.
type DebugLogger struct {
	mu   sync.Mutex
	file *os.File
}

// newDebugLogger creates a logger writing to the given path, creating
// parent directories as needed. An empty path or an open failure yields
// a no-op logger.
func newDebugLogger(path string) *DebugLogger {
	if path == "" {
		return &DebugLogger{}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &DebugLogger{}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return &DebugLogger{}
	}
	l := &DebugLogger{file: f}
	l.Log("=== Swarm debug log started at %s ===", time.Now().Format(time.RFC3339))
	return l
}

// Log writes a timestamped message to the debug log.
func (l *DebugLogger) Log(format string, args ...interface{}) {
	if l == nil || l.file == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(l.file, "[%s] %s\n", timestamp, msg)
}

// Close closes the log file. Safe on a no-op logger.
func (l *DebugLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}
