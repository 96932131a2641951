package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel defines the severity of the log entry.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String makes LogLevel satisfy the fmt.Stringer interface.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps a config string such as "debug" or "WARN" to a LogLevel.
// Unknown values fall back to LevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// LogEntry is the structured log entry delivered to an embedding host.
type LogEntry struct {
	Timestamp time.Time
	Level     LogLevel
	Subsystem string
	Message   string
	Err       error
}

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
	hostChannel   chan LogEntry
	hostLevel     LogLevel
	isHostMode    bool
)

const hostChannelBufferSize = 2048

func initCommon(mode string, level LogLevel, output io.Writer, channelBufferSize int) <-chan LogEntry {
	mu.Lock()
	defer mu.Unlock()

	opts := &slog.HandlerOptions{
		Level: level.SlogLevel(),
	}

	if mode == "host" {
		isHostMode = true
		hostLevel = level
		if channelBufferSize <= 0 {
			channelBufferSize = hostChannelBufferSize
		}
		hostChannel = make(chan LogEntry, channelBufferSize)
		// Entries go to the channel; the handler only covers global slog calls.
		defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(defaultLogger)
		return hostChannel
	}

	isHostMode = false
	hostChannel = nil
	defaultLogger = slog.New(slog.NewTextHandler(output, opts))
	slog.SetDefault(defaultLogger)
	return nil
}

// InitForHost initializes logging for an embedding host shell. Entries at or
// above filterLevel are delivered on the returned channel, which the host is
// expected to drain. When the buffer is full new entries are dropped rather
// than blocking the orchestrator.
func InitForHost(filterLevel LogLevel) <-chan LogEntry {
	return initCommon("host", filterLevel, os.Stderr, hostChannelBufferSize)
}

// InitForCLI initializes the logging system for CLI mode.
func InitForCLI(filterLevel LogLevel, output io.Writer) {
	initCommon("cli", filterLevel, output, 0)
}

func logInternal(level LogLevel, subsystem string, err error, messageFmt string, args ...interface{}) {
	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}

	now := time.Now()

	mu.RLock()
	defer mu.RUnlock()

	if isHostMode {
		if level < hostLevel {
			return
		}
		if hostChannel == nil {
			fmt.Fprintf(os.Stderr, "[LOGGING_CRITICAL] host mode active but channel is closed. Log: %s [%s] %s\n", now.Format(time.RFC3339), level, msg)
			return
		}
		select {
		case hostChannel <- LogEntry{Timestamp: now, Level: level, Subsystem: subsystem, Message: msg, Err: err}:
		default:
		}
		return
	}

	if defaultLogger == nil {
		fmt.Fprintf(os.Stderr, "[LOGGING_ERROR] Logger not initialized. Log: %s [%s] %s\n", now.Format(time.RFC3339), level, msg)
		return
	}

	slogAttrs := []slog.Attr{slog.String("subsystem", subsystem)}
	if err != nil {
		slogAttrs = append(slogAttrs, slog.String("error", err.Error()))
	}

	defaultLogger.LogAttrs(context.Background(), level.SlogLevel(), msg, slogAttrs...)
}

// Debug logs a debug message.
func Debug(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelDebug, subsystem, nil, messageFmt, args...)
}

// Info logs an informational message.
func Info(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelInfo, subsystem, nil, messageFmt, args...)
}

// Warn logs a warning message.
func Warn(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelWarn, subsystem, nil, messageFmt, args...)
}

// Error logs an error message.
func Error(subsystem string, err error, messageFmt string, args ...interface{}) {
	logInternal(LevelError, subsystem, err, messageFmt, args...)
}

// CloseHostChannel closes the host log channel. Should be called on application shutdown.
func CloseHostChannel() {
	mu.Lock()
	defer mu.Unlock()
	if hostChannel != nil {
		close(hostChannel)
		hostChannel = nil
	}
}
