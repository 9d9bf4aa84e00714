package logger

import (
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/user/optiflow/pkg/ports"
)

// FileLogger writes structured JSON logs to a rotating file. It is
// intended for long render runs where console output is not kept.
type FileLogger struct {
	log       *logrus.Logger
	component string
}

// NewFile creates a file logger writing to path with rotation.
func NewFile(path string, level ports.LogLevel) *FileLogger {
	rotator := &lumberjack.Logger{
		Filename:   filepath.ToSlash(path),
		MaxSize:    5, // MB
		MaxBackups: 10,
		MaxAge:     30, // days
		Compress:   true,
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC1123Z,
	})
	log.SetOutput(rotator)
	log.SetLevel(logrusLevel(level))

	return &FileLogger{log: log}
}

func logrusLevel(level ports.LogLevel) logrus.Level {
	switch level {
	case ports.LevelDebug:
		return logrus.DebugLevel
	case ports.LevelInfo:
		return logrus.InfoLevel
	case ports.LevelWarn:
		return logrus.WarnLevel
	case ports.LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.PanicLevel
	}
}

func (l *FileLogger) entry() *logrus.Entry {
	if l.component != "" {
		return l.log.WithField("component", l.component)
	}
	return logrus.NewEntry(l.log)
}

// Debug logs a debug message.
func (l *FileLogger) Debug(msg string, args ...interface{}) {
	l.entry().Debugf(msg, args...)
}

// Info logs an informational message.
func (l *FileLogger) Info(msg string, args ...interface{}) {
	l.entry().Infof(msg, args...)
}

// Warn logs a warning message.
func (l *FileLogger) Warn(msg string, args ...interface{}) {
	l.entry().Warnf(msg, args...)
}

// Error logs an error message.
func (l *FileLogger) Error(msg string, args ...interface{}) {
	l.entry().Errorf(msg, args...)
}

// WithComponent returns a new logger tagged with the component name.
func (l *FileLogger) WithComponent(component string) ports.Logger {
	return &FileLogger{log: l.log, component: component}
}

// Ensure FileLogger implements ports.Logger
var _ ports.Logger = (*FileLogger)(nil)
