package obs

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	base = newLogger(os.Stderr, zerolog.InfoLevel)
)

func init() {
	zerolog.TimestampFieldName = "ts"
	zerolog.MessageFieldName = "msg"
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// SetOutput redirects all log lines to w. Stdout carries relayed lines, so
// callers should keep diagnostics off it.
func SetOutput(w io.Writer) {
	mu.Lock()
	base = newLogger(w, base.GetLevel())
	mu.Unlock()
}

// EnableDebug globally enables debug logs.
func EnableDebug(v bool) {
	if v {
		setLevel(zerolog.DebugLevel)
		return
	}
	if current() == zerolog.DebugLevel {
		setLevel(zerolog.InfoLevel)
	}
}

// SetLevel parses a level name (debug, info, warn, error). Unknown names fall
// back to info and are reported in the returned bool.
func SetLevel(name string) bool {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || lvl == zerolog.NoLevel {
		setLevel(zerolog.InfoLevel)
		return false
	}
	setLevel(lvl)
	return true
}

func setLevel(l zerolog.Level) {
	mu.Lock()
	base = base.Level(l)
	mu.Unlock()
}

func current() zerolog.Level {
	mu.RLock()
	defer mu.RUnlock()
	return base.GetLevel()
}

type Fields map[string]any

func logWith(level zerolog.Level, msg string, f Fields) {
	mu.RLock()
	l := base
	mu.RUnlock()
	e := l.WithLevel(level)
	if e == nil {
		return
	}
	if len(f) > 0 {
		e = e.Fields(map[string]any(f))
	}
	e.Msg(msg)
}

func Info(msg string, f Fields)  { logWith(zerolog.InfoLevel, msg, f) }
func Warn(msg string, f Fields)  { logWith(zerolog.WarnLevel, msg, f) }
func Error(msg string, f Fields) { logWith(zerolog.ErrorLevel, msg, f) }
func Debug(msg string, f Fields) { logWith(zerolog.DebugLevel, msg, f) }
