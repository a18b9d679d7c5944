package logger

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements Logger on top of a zap.SugaredLogger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger builds a zap-backed logger. Production mode emits JSON.
func NewZapLogger(level string, production bool) Logger {
	cfg := zap.NewDevelopmentConfig()
	if production {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.MessageKey = "message"
	}
	cfg.Level = zap.NewAtomicLevelAt(parseZapLevel(level))
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(timestampFormat)

	base, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		base = zap.NewNop()
	}
	return &ZapLogger{sugar: base.Sugar()}
}

// NewZapLoggerFrom wraps an existing zap logger, mostly for tests using zaptest/observer.
func NewZapLoggerFrom(base *zap.Logger) Logger {
	return &ZapLogger{sugar: base.Sugar()}
}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return NewZapLoggerFrom(zap.NewNop())
}

func parseZapLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func (z *ZapLogger) Debug(args ...interface{}) { z.sugar.Debug(args...) }
func (z *ZapLogger) Info(args ...interface{})  { z.sugar.Info(args...) }
func (z *ZapLogger) Warn(args ...interface{})  { z.sugar.Warn(args...) }
func (z *ZapLogger) Error(args ...interface{}) { z.sugar.Error(args...) }
func (z *ZapLogger) Fatal(args ...interface{}) { z.sugar.Fatal(args...) }

func (z *ZapLogger) Debugf(format string, args ...interface{}) { z.sugar.Debugf(format, args...) }
func (z *ZapLogger) Infof(format string, args ...interface{})  { z.sugar.Infof(format, args...) }
func (z *ZapLogger) Warnf(format string, args ...interface{})  { z.sugar.Warnf(format, args...) }
func (z *ZapLogger) Errorf(format string, args ...interface{}) { z.sugar.Errorf(format, args...) }
func (z *ZapLogger) Fatalf(format string, args ...interface{}) { z.sugar.Fatalf(format, args...) }

// WithFields adds structured fields to the logger
func (z *ZapLogger) WithFields(fields map[string]interface{}) Logger {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return &ZapLogger{sugar: z.sugar.With(kv...)}
}

// WithContext copies the same context keys as the logrus backend.
func (z *ZapLogger) WithContext(ctx context.Context) Logger {
	return z.WithFields(fieldsFromContext(ctx))
}

// WithComponent adds component name to the logger
func (z *ZapLogger) WithComponent(component string) Logger {
	return &ZapLogger{sugar: z.sugar.With("component", component)}
}

// String is handy when the logger itself ends up in a log line.
func (z *ZapLogger) String() string {
	return fmt.Sprintf("ZapLogger(%s)", z.sugar.Desugar().Level())
}
