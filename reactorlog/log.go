// Package reactorlog is this module's diagnostic sink: a small severity-
// gated logger over log/slog, mirroring original_source/include/reaction/log.h's
// Info|Warn|Error levels and global threshold, and the
// slog.Handler-based HumanHandler/SilentHandler split the teacher's
// extensions/graph_debug.go uses for the same purpose.
package reactorlog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Level mirrors log.h's Log::Level enum (Info < Warn < Error).
type Level int

const (
	Info Level = iota
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case Info:
		return slog.LevelInfo
	case Warn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Logger gates log.h-style Info/Warn/Error calls behind a threshold and
// emits the ones that pass through a slog.Handler.
type Logger struct {
	threshold Level
	slog      *slog.Logger
}

// New constructs a Logger that writes to stderr via a text handler,
// suppressing anything below threshold.
func New(threshold Level) *Logger {
	return &Logger{threshold: threshold, slog: slog.New(slog.NewTextHandler(os.Stderr, nil))}
}

// NewWithHandler constructs a Logger over a caller-supplied slog.Handler,
// e.g. reactordebug's graph-rendering handler.
func NewWithHandler(threshold Level, h slog.Handler) *Logger {
	return &Logger{threshold: threshold, slog: slog.New(h)}
}

func (l *Logger) enabled(lv Level) bool { return l != nil && lv >= l.threshold }

// Info logs msg with attrs at Info severity if the threshold admits it.
func (l *Logger) Info(msg string, attrs ...any) { l.log(Info, msg, attrs...) }

// Warn logs msg with attrs at Warn severity if the threshold admits it.
func (l *Logger) Warn(msg string, attrs ...any) { l.log(Warn, msg, attrs...) }

// Error logs msg with attrs at Error severity if the threshold admits it.
func (l *Logger) Error(msg string, attrs ...any) { l.log(Error, msg, attrs...) }

func (l *Logger) log(lv Level, msg string, attrs ...any) {
	if !l.enabled(lv) {
		return
	}
	l.slog.Log(context.Background(), lv.slogLevel(), msg, attrs...)
}

// Format applies log.h's "{}"-placeholder fallback formatter: each "{}" in
// msg is replaced, in order, with fmt.Sprint of the corresponding arg; any
// arguments left over after placeholders run out are appended
// space-separated, and any placeholders left over after args run out are
// left as literal "{}" text. Used by callers building a message before
// handing it to Info/Warn/Error as a single pre-formatted string.
func Format(msg string, args ...any) string {
	var b strings.Builder
	ai := 0
	for {
		idx := strings.Index(msg, "{}")
		if idx < 0 {
			b.WriteString(msg)
			break
		}
		b.WriteString(msg[:idx])
		if ai < len(args) {
			b.WriteString(fmt.Sprint(args[ai]))
			ai++
		} else {
			b.WriteString("{}")
		}
		msg = msg[idx+2:]
	}
	for ; ai < len(args); ai++ {
		b.WriteByte(' ')
		b.WriteString(fmt.Sprint(args[ai]))
	}
	return b.String()
}
