package mocks

import (
	"fmt"
	"sync"

	"github.com/user/optiflow/pkg/ports"
)

// Logger is a recording mock implementation of ports.Logger.
type Logger struct {
	mu       sync.Mutex
	Messages []string
}

// NewLogger creates an empty recording logger.
func NewLogger() *Logger {
	return &Logger{}
}

func (m *Logger) record(level, msg string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, level+": "+fmt.Sprintf(msg, args...))
}

func (m *Logger) Debug(msg string, args ...interface{}) { m.record("debug", msg, args...) }
func (m *Logger) Info(msg string, args ...interface{})  { m.record("info", msg, args...) }
func (m *Logger) Warn(msg string, args ...interface{})  { m.record("warn", msg, args...) }
func (m *Logger) Error(msg string, args ...interface{}) { m.record("error", msg, args...) }

func (m *Logger) WithComponent(component string) ports.Logger { return m }

var _ ports.Logger = (*Logger)(nil)
