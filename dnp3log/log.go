// Package dnp3log defines the logging seam the rest of the driver
// writes through: a small Provider interface any sink can implement,
// plus a default backend built on charmbracelet/log.
//
// The split between a tiny leveled interface (Provider) and a wrapper
// that gates calls by configured level (Logger) follows the teacher's
// clog.LogProvider/clog.Clog pair, generalized from clog's four
// levels (Critical/Error/Warn/Debug, atomic on/off switch) to the
// five levels this driver's Config.LogLevel names, plus an explicit
// raw-frame hex dump hook.
package dnp3log

import (
	"fmt"

	"github.com/rob-gra/go-dnp3/dnperr"
)

// Level is one of the driver's five log levels, ordered least to most
// severe.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

// ParseLevel maps a config string (case-sensitive, as the DEBUG/INFO/
// WARNING/ERROR/CRITICAL vocabulary of Config.LogLevel) to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARNING":
		return LevelWarning, nil
	case "ERROR":
		return LevelError, nil
	case "CRITICAL":
		return LevelCritical, nil
	default:
		return 0, &dnperr.ValidationError{Field: "log_level", Reason: "must be one of DEBUG, INFO, WARNING, ERROR, CRITICAL"}
	}
}

// Provider is the sink every log call is delivered to. Implementing
// just these five methods is enough to plug in any destination
// (stdlib log, a structured logger, a test spy).
type Provider interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Criticalf(format string, args ...interface{})
}

// Logger gates calls to a Provider by the configured minimum level and
// optionally renders raw frame bytes at DEBUG.
type Logger struct {
	provider     Provider
	level        Level
	logRawFrames bool
}

// New builds a Logger delivering to provider, filtering out anything
// below level. When logRawFrames is true, HexDump emits at DEBUG;
// otherwise it is a no-op.
func New(provider Provider, level Level, logRawFrames bool) *Logger {
	return &Logger{provider: provider, level: level, logRawFrames: logRawFrames}
}

func (l *Logger) enabled(level Level) bool { return l != nil && l.provider != nil && level >= l.level }

func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.enabled(LevelDebug) {
		l.provider.Debugf(format, args...)
	}
}

func (l *Logger) Infof(format string, args ...interface{}) {
	if l.enabled(LevelInfo) {
		l.provider.Infof(format, args...)
	}
}

func (l *Logger) Warningf(format string, args ...interface{}) {
	if l.enabled(LevelWarning) {
		l.provider.Warningf(format, args...)
	}
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	if l.enabled(LevelError) {
		l.provider.Errorf(format, args...)
	}
}

func (l *Logger) Criticalf(format string, args ...interface{}) {
	if l.enabled(LevelCritical) {
		l.provider.Criticalf(format, args...)
	}
}

// HexDump logs data as space-separated hex at DEBUG, prefixed by
// prefix (typically "send" or "recv"), when raw-frame logging is
// enabled. A no-op otherwise, so callers can call it unconditionally.
func (l *Logger) HexDump(prefix string, data []byte) {
	if l == nil || !l.logRawFrames {
		return
	}
	l.Debugf("%s: % x", prefix, data)
}

// nopProvider discards everything; used when no provider is supplied.
type nopProvider struct{}

func (nopProvider) Debugf(string, ...interface{})    {}
func (nopProvider) Infof(string, ...interface{})     {}
func (nopProvider) Warningf(string, ...interface{})  {}
func (nopProvider) Errorf(string, ...interface{})    {}
func (nopProvider) Criticalf(string, ...interface{}) {}

// Nop returns a Logger that discards everything.
func Nop() *Logger { return New(nopProvider{}, LevelCritical+1, false) }

var _ fmt.Stringer = Level(0)

// String renders a Level back to its config vocabulary word.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}
