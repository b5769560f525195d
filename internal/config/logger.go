package config

import (
	"io"
	"log/slog"
	"strings"
)

// LevelCritical sits above slog.LevelError.
const LevelCritical = slog.Level(12)

// ParseLevel maps CRITICAL, ERROR, WARNING, INFO and DEBUG, in any case,
// to a slog level. Unknown names give INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "critical":
		return LevelCritical
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a logger writing to w at the configured level and format.
// withTime=false drops timestamps, for short-lived command line runs.
func (c *AppConfig) NewLogger(w io.Writer, withTime bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(c.LogLevel),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch {
			case a.Key == slog.TimeKey && !withTime:
				return slog.Attr{}
			case a.Key == slog.LevelKey:
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelCritical {
					a.Value = slog.StringValue("CRITICAL")
				}
			}
			return a
		},
	}

	var handler slog.Handler
	switch strings.ToLower(c.LogFormat) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
