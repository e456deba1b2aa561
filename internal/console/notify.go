package console

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Level is the severity of a notification
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier shows a message to the operator
type Notifier interface {
	Notify(level Level, msg string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(level Level, msg string)

// Notify calls f
func (f NotifierFunc) Notify(level Level, msg string) {
	f(level, msg)
}

// WriterNotifier prints notifications as lines to w
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier creates a notifier writing to w
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Notify writes one line
func (n *WriterNotifier) Notify(level Level, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	prefix := "•"
	switch level {
	case LevelSuccess:
		prefix = "✓"
	case LevelError:
		prefix = "✗"
	}
	fmt.Fprintf(n.w, "%s %s\n", prefix, msg)
}

// LogNotifier forwards notifications to a logger
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs msg at a level matching level
func (n LogNotifier) Notify(level Level, msg string) {
	if level == LevelError {
		n.Logger.Error(msg)
		return
	}
	n.Logger.Info(msg, "level", string(level))
}
