package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes levelled messages to a log file and, optionally, the console
type Logger struct {
	mu      sync.Mutex
	file    *os.File
	logger  *log.Logger
	console io.Writer
}

// NewLogger creates a logger that appends to logPath and echoes to stdout
func NewLogger(logPath string) (*Logger, error) {
	dir := filepath.Dir(logPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &Logger{
		file:    file,
		logger:  log.New(file, "", log.LstdFlags),
		console: os.Stdout,
	}, nil
}

// NewWriterLogger creates a logger without a backing file. Used by tests and
// by callers that only need console output.
func NewWriterLogger(w io.Writer) *Logger {
	return &Logger{logger: log.New(w, "", log.LstdFlags)}
}

// SetConsole redirects console echo; nil disables it. The CLI disables echo
// so that stdout only carries command output.
func (l *Logger) SetConsole(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console = w
}

// Close closes the logger
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.write("INFO", format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.write("ERROR", format, v...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.write("DEBUG", format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.write("WARN", format, v...)
}

func (l *Logger) write(level, format string, v ...interface{}) {
	msg := fmt.Sprintf("["+level+"] "+format, v...)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Println(msg)
	if l.console != nil {
		fmt.Fprintln(l.console, msg)
	}
}

// GetLogPath returns today's log path under dir
func GetLogPath(dir string) string {
	if dir == "" {
		dir = filepath.Join(".", "logs")
	}
	return filepath.Join(dir, fmt.Sprintf("chat-analyzer-%s.log", time.Now().Format("2006-01-02")))
}
