package app

import (
	"github.com/advdv/bcapture"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger configured from the environment.
// BC_LOG_LEVEL controls the level (debug, info, warn, error).
func NewLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.LogLevel)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

type zapLogger struct{ *zap.Logger }

func (l zapLogger) LogUnhandledServeError(err error) {
	l.Logger.Error("unhandled server error", zap.Error(err))
}

func (l zapLogger) LogCommittedServeError(err error) {
	l.Logger.Error("server error after response was committed", zap.Error(err))
}

func (l zapLogger) LogRelease(rel bcapture.Release) {
	l.Logger.Debug("released response",
		zap.String("path", rel.Path),
		zap.Bool("static", rel.Static),
		zap.Stringer("channel", rel.Channel),
		zap.Bool("buffered", rel.Buffered),
		zap.Bool("transformed", rel.Transformed),
		zap.Int("bytes", rel.Bytes))
}

func newZapCaptureLogger(l *zap.Logger) bcapture.Logger {
	return zapLogger{l.Named("bcapture")}
}
