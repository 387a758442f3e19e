package driver

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/retro-runtime/abi"
)

// ZapLog writes core log messages to a zap logger. Trailing newlines, which
// cores almost always include, are trimmed.
type ZapLog struct {
	logger *zap.Logger
}

// NewZapLog returns a log driver writing to logger, or to a no-op logger
// when logger is nil.
func NewZapLog(logger *zap.Logger) *ZapLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLog{logger: logger.Named("core")}
}

// Level maps a core log level onto zap.
func Level(level abi.LogLevel) zapcore.Level {
	switch level {
	case abi.LogDebug:
		return zapcore.DebugLevel
	case abi.LogInfo:
		return zapcore.InfoLevel
	case abi.LogWarn:
		return zapcore.WarnLevel
	}
	return zapcore.ErrorLevel
}

func (l *ZapLog) Log(level abi.LogLevel, msg string) {
	msg = strings.TrimRight(msg, "\r\n")
	if ce := l.logger.Check(Level(level), msg); ce != nil {
		ce.Write()
	}
}
