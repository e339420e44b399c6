package utils

import (
	"io"
	"log/slog"
)

const (
	// LevelTrace is used for byte-level protocol traffic
	LevelTrace = slog.Level(-8)
	// LevelNone turns a DebugLog category off
	LevelNone = slog.Level(-16)
)

var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
}

// NewLogger creates a text logger writing records at or above level to w
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	ho := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				level := a.Value.Any().(slog.Level)
				levelLabel, exists := levelNames[level]
				if !exists {
					levelLabel = level.String()
				}

				a.Value = slog.StringValue(levelLabel)
			}

			return a
		},
	}

	return slog.New(slog.NewTextHandler(w, ho))
}
