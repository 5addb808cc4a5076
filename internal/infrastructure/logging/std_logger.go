package logging

import (
	"io"
	"log"
	"strings"
	"sync"

	"showip.dev/cli/internal/application/ports"
)

var levelRank = map[ports.LogLevel]int{
	ports.LogLevelDebug: 0,
	ports.LogLevelInfo:  1,
	ports.LogLevelWarn:  2,
	ports.LogLevelError: 3,
}

// StdLogger adapts the standard logger to the LoggingGateway interface
type StdLogger struct {
	logger *log.Logger

	mu       sync.RWMutex
	logLevel ports.LogLevel
}

// NewStdLogger creates a logger writing to w with the "[showip] " prefix
func NewStdLogger(w io.Writer, level ports.LogLevel) *StdLogger {
	return &StdLogger{
		logger:   log.New(w, "[showip] ", log.LstdFlags),
		logLevel: level,
	}
}

// Log writes message when level is at or above the current level
func (l *StdLogger) Log(level ports.LogLevel, message string, fields map[string]interface{}) {
	if !l.shouldLog(level) {
		return
	}

	levelStr := strings.ToUpper(string(level))
	if fields != nil {
		l.logger.Printf("%s: %s (fields: %v)", levelStr, message, fields)
	} else {
		l.logger.Printf("%s: %s", levelStr, message)
	}
}

func (l *StdLogger) LogError(err error, message string, fields map[string]interface{}) {
	if !l.shouldLog(ports.LogLevelError) {
		return
	}

	if fields != nil {
		l.logger.Printf("ERROR: %s: %v (fields: %v)", message, err, fields)
	} else {
		l.logger.Printf("ERROR: %s: %v", message, err)
	}
}

func (l *StdLogger) SetLogLevel(level ports.LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logLevel = level
}

func (l *StdLogger) GetLogLevel() ports.LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.logLevel
}

// shouldLog determines if a message should be logged based on current log level
func (l *StdLogger) shouldLog(level ports.LogLevel) bool {
	current, ok := levelRank[l.GetLogLevel()]
	if !ok {
		current = levelRank[ports.LogLevelInfo]
	}
	rank, ok := levelRank[level]
	if !ok {
		return true
	}
	return rank >= current
}

// Discard returns a logger that drops everything.
func Discard() *StdLogger {
	return NewStdLogger(io.Discard, ports.LogLevelError)
}

var _ ports.LoggingGateway = (*StdLogger)(nil)
