package utils

import (
	"context"
	"log/slog"

	telnet "github.com/moodclient/teleconsole"
)

// DebugLogConfig sets the level each category of terminal activity is logged at.
// Categories set to LevelNone are not logged.
type DebugLogConfig struct {
	EncounteredErrorLevel  slog.Level
	IncomingCommandLevel   slog.Level
	IncomingDataLevel      slog.Level
	OutboundCommandLevel   slog.Level
	OutboundDataLevel      slog.Level
	TelOptEventLevel       slog.Level
	TelOptStateChangeLevel slog.Level
	SetupCompleteLevel     slog.Level
}

// DefaultDebugLogConfig logs errors as warnings, negotiation at debug level and raw
// traffic at trace level
func DefaultDebugLogConfig() DebugLogConfig {
	return DebugLogConfig{
		EncounteredErrorLevel:  slog.LevelWarn,
		IncomingCommandLevel:   slog.LevelDebug,
		IncomingDataLevel:      LevelTrace,
		OutboundCommandLevel:   slog.LevelDebug,
		OutboundDataLevel:      LevelTrace,
		TelOptEventLevel:       slog.LevelDebug,
		TelOptStateChangeLevel: slog.LevelDebug,
		SetupCompleteLevel:     slog.LevelDebug,
	}
}

type DebugLog struct {
	logger *slog.Logger
	config DebugLogConfig
}

func NewDebugLog(terminal *telnet.Terminal, logger *slog.Logger, config DebugLogConfig) *DebugLog {
	log := &DebugLog{logger: logger, config: config}

	if config.EncounteredErrorLevel != LevelNone {
		terminal.RegisterEncounteredErrorHook(log.logError)
	}
	if config.IncomingCommandLevel != LevelNone {
		terminal.RegisterIncomingCommandHook(log.logIncomingCommand)
	}
	if config.IncomingDataLevel != LevelNone {
		terminal.RegisterIncomingDataHook(log.logIncomingData)
	}
	if config.OutboundCommandLevel != LevelNone {
		terminal.RegisterOutboundCommandHook(log.logOutboundCommand)
	}
	if config.OutboundDataLevel != LevelNone {
		terminal.RegisterOutboundDataHook(log.logOutboundData)
	}
	terminal.RegisterTelOptEventHook(log.logTelOptEvent)
	if config.SetupCompleteLevel != LevelNone {
		terminal.RegisterSetupCompleteHook(log.logSetupComplete)
	}

	return log
}

func (l *DebugLog) enabled(level slog.Level) bool {
	return level != LevelNone && l.logger.Enabled(context.Background(), level)
}

func (l *DebugLog) logError(terminal *telnet.Terminal, err error) {
	l.logger.LogAttrs(context.Background(), l.config.EncounteredErrorLevel, "Encountered error", slog.Any("error", err))
}

func (l *DebugLog) logIncomingCommand(terminal *telnet.Terminal, c telnet.Command) {
	if !l.enabled(l.config.IncomingCommandLevel) {
		return
	}
	l.logger.LogAttrs(context.Background(), l.config.IncomingCommandLevel, "Received command", slog.String("command", terminal.CommandString(c)))
}

func (l *DebugLog) logIncomingData(terminal *telnet.Terminal, data []byte) {
	l.logger.LogAttrs(context.Background(), l.config.IncomingDataLevel, "Received data", slog.String("contents", string(data)))
}

func (l *DebugLog) logOutboundCommand(terminal *telnet.Terminal, c telnet.Command) {
	if !l.enabled(l.config.OutboundCommandLevel) {
		return
	}
	l.logger.LogAttrs(context.Background(), l.config.OutboundCommandLevel, "Sent command", slog.String("command", terminal.CommandString(c)))
}

func (l *DebugLog) logOutboundData(terminal *telnet.Terminal, data []byte) {
	l.logger.LogAttrs(context.Background(), l.config.OutboundDataLevel, "Sent data", slog.String("contents", string(data)))
}

func (l *DebugLog) logTelOptEvent(terminal *telnet.Terminal, event telnet.TelOptEvent) {
	switch typed := event.(type) {
	case telnet.TelOptStateChangeEvent:
		if !l.enabled(l.config.TelOptStateChangeLevel) {
			return
		}
		l.logger.LogAttrs(context.Background(), l.config.TelOptStateChangeLevel, "TelOpt State Change",
			slog.String("option", typed.Option().String()),
			slog.String("oldState", typed.OldState.String()),
			slog.String("newState", typed.NewState.String()),
			slog.String("side", typed.Side.String()),
		)
	default:
		if !l.enabled(l.config.TelOptEventLevel) {
			return
		}
		l.logger.LogAttrs(context.Background(), l.config.TelOptEventLevel, event.String(), slog.String("option", event.Option().String()))
	}
}

func (l *DebugLog) logSetupComplete(terminal *telnet.Terminal, event telnet.SetupCompleteEvent) {
	l.logger.LogAttrs(context.Background(), l.config.SetupCompleteLevel, "Negotiation complete", slog.Bool("timedOut", event.TimedOut))
}
