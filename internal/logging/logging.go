// Package logging configures the global slog logger for autoclip.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// Format selects the log output format.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat converts a string to a Format, returning FormatAuto for unknown values.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "text", "tint", "human":
		return FormatText
	case "json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// ParseLevel converts a string to a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// NewHandler returns a tinted handler for terminals and a JSON handler
// otherwise, unless format forces one.
func NewHandler(w io.Writer, format Format, level slog.Level) slog.Handler {
	if format == FormatText || (format == FormatAuto && IsTTY(w)) {
		return tinter.NewHandler(w, &tinter.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// Setup installs the default logger on stderr. An empty level means debug
// when running interactively and info otherwise.
func Setup(interactive bool, format, level string) {
	lvl := ParseLevel(level)
	if level == "" {
		lvl = slog.LevelInfo
		if interactive {
			lvl = slog.LevelDebug
		}
	}
	slog.SetDefault(slog.New(NewHandler(os.Stderr, ParseFormat(format), lvl)))
}

// PreviewLen is the number of runes Preview keeps.
const PreviewLen = 120

// Preview shortens clipboard text for debug logs.
func Preview(s string) string {
	if utf8.RuneCountInString(s) <= PreviewLen {
		return s
	}
	n := 0
	for i := range s {
		if n == PreviewLen {
			return s[:i] + "…"
		}
		n++
	}
	return s
}
