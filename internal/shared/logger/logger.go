package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"job-portal/internal/shared/contextkeys"

	"github.com/sirupsen/logrus"
)

const (
	formatJSON = "json"
	backendZap = "zap"

	timestampFormat = "2006-01-02T15:04:05.000Z07:00"
)

// Logger is the logging surface every package in the portal depends on.
// Both the logrus and zap backends implement it.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	WithFields(fields map[string]interface{}) Logger
	WithContext(ctx context.Context) Logger
	WithComponent(component string) Logger
}

// Options configures the logrus backend. Zero values mean info level,
// text output and stdout.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// optionsFromEnv reads LOG_LEVEL and LOG_FORMAT. Production forces JSON.
func optionsFromEnv() Options {
	opts := Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	}
	if isProduction() {
		opts.Format = formatJSON
	}
	return opts
}

// LogrusLogger adapts a logrus entry. The leveled methods come from the
// embedded entry; only the builders that return Logger are overridden.
type LogrusLogger struct {
	*logrus.Entry
}

// New builds a logrus-backed logger from opts.
func New(opts Options) *LogrusLogger {
	base := logrus.New()

	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	if strings.EqualFold(opts.Format, formatJSON) {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		})
	}

	if opts.Output != nil {
		base.SetOutput(opts.Output)
	} else {
		base.SetOutput(os.Stdout)
	}
	return &LogrusLogger{Entry: logrus.NewEntry(base)}
}

// NewLogger builds a logrus logger configured from the environment.
func NewLogger() Logger {
	return New(optionsFromEnv())
}

// NewLoggerWithConfig builds a logrus logger with an explicit level and format.
func NewLoggerWithConfig(level, format string) Logger {
	return New(Options{Level: level, Format: format})
}

func (l *LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &LogrusLogger{Entry: l.Entry.WithFields(logrus.Fields(fields))}
}

func (l *LogrusLogger) WithContext(ctx context.Context) Logger {
	return l.WithFields(fieldsFromContext(ctx))
}

func (l *LogrusLogger) WithComponent(component string) Logger {
	return &LogrusLogger{Entry: l.Entry.WithField("component", component)}
}

// contextFields lists the context keys copied into log fields by WithContext.
var contextFields = map[interface{}]string{
	contextkeys.UserEmailKey: "user_email",
	contextkeys.RequestIDKey: "request_id",
	contextkeys.OperationKey: "operation",
}

// fieldsFromContext collects the non-empty string values of contextFields.
func fieldsFromContext(ctx context.Context) map[string]interface{} {
	fields := make(map[string]interface{}, len(contextFields))
	if ctx == nil {
		return fields
	}
	for key, name := range contextFields {
		if s, ok := ctx.Value(key).(string); ok && s != "" {
			fields[name] = s
		}
	}
	return fields
}

// NewFromEnv picks the backend named by LOG_BACKEND; logrus unless it says "zap".
func NewFromEnv() Logger {
	if strings.EqualFold(os.Getenv("LOG_BACKEND"), backendZap) {
		return NewZapLogger(os.Getenv("LOG_LEVEL"), isProduction())
	}
	return NewLogger()
}

func isProduction() bool {
	switch strings.ToLower(os.Getenv("ENVIRONMENT")) {
	case "production", "prod":
		return true
	}
	return false
}
