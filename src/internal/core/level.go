// FILE: logroute/src/internal/core/level.go
package core

import (
	"fmt"
	"strings"
)

// Level is a routing key. Levels are never compared for severity.
type Level uint8

const (
	LevelNone Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{
	LevelNone:  "",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// Levels lists every routable level.
func Levels() []Level {
	return []Level{LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal}
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("LEVEL(%d)", uint8(l))
}

// Valid reports whether l is one of the routable levels.
func (l Level) Valid() bool {
	return l >= LevelDebug && l <= LevelFatal
}

// ParseLevel is case-insensitive and rejects unknown names.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	case "FATAL":
		return LevelFatal, nil
	default:
		return LevelNone, NewConfigurationError(fmt.Sprintf("unknown log level: %q", s))
	}
}
