package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"moul.io/zapfilter"
)

type (
	Level  = zapcore.Level
	Field  = zap.Field
	Option = zap.Option
)

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
	FatalLevel = zapcore.FatalLevel
)

// field helpers, so callers don't need to import zap
var (
	Skip     = zap.Skip
	Binary   = zap.Binary
	Bool     = zap.Bool
	String   = zap.String
	Strings  = zap.Strings
	Int      = zap.Int
	Ints     = zap.Ints
	Int32    = zap.Int32
	Int64    = zap.Int64
	Float64  = zap.Float64
	Any      = zap.Any
	Duration = zap.Duration
	Time     = zap.Time

	WithCaller    = zap.WithCaller
	AddCallerSkip = zap.AddCallerSkip
)

func ErrorField(err error) Field {
	return zap.Error(err)
}

type Logger struct {
	l     *zap.Logger
	level zap.AtomicLevel
}

// New creates a logger writing JSON entries to writer
func New(writer io.Writer, level Level, opts ...Option) *Logger {
	if writer == nil {
		panic("the writer is nil")
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	return newLogger(zapcore.NewJSONEncoder(cfg), writer, level, opts...)
}

// DevLogger creates a logger with human readable console output
func DevLogger(writer io.Writer, level Level, opts ...Option) *Logger {
	if writer == nil {
		panic("the writer is nil")
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return newLogger(zapcore.NewConsoleEncoder(cfg), writer, level, opts...)
}

//nolint:whitespace // can't make both editor and linter happy
func newLogger(
	enc zapcore.Encoder, writer io.Writer, level Level, opts ...Option,
) *Logger {
	atomic := zap.NewAtomicLevelAt(level)
	core := zapcore.NewCore(enc, zapcore.AddSync(writer), atomic)
	return &Logger{
		l:     zap.New(core, opts...),
		level: atomic,
	}
}

// WithFilter returns a logger whose entries are filtered by zapfilter rules.
// Example: "info+:* debug+:processing.*"
func (l *Logger) WithFilter(rules string) (*Logger, error) {
	if rules == "" {
		return l, nil
	}
	filter, err := zapfilter.ParseRules(rules)
	if err != nil {
		return nil, err
	}
	// the inner core must pass everything, zapfilter decides
	l.level.SetLevel(DebugLevel)
	return &Logger{
		l: l.l.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapfilter.NewFilteringCore(c, filter)
		})),
		level: l.level,
	}, nil
}

func (l *Logger) Debug(msg string, fields ...Field) {
	l.l.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.l.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.l.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...Field) {
	l.l.Error(msg, fields...)
}

func (l *Logger) Fatal(msg string, fields ...Field) {
	l.l.Fatal(msg, fields...)
}

func (l *Logger) Named(name string) *Logger {
	return &Logger{l: l.l.Named(name), level: l.level}
}

func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{l: l.l.With(fields...), level: l.level}
}

func (l *Logger) WithOptions(opts ...Option) *Logger {
	return &Logger{l: l.l.WithOptions(opts...), level: l.level}
}

func (l *Logger) Level() Level {
	return l.level.Level()
}

func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(level)
}

// Zap exposes the underlying zap logger (used by the sql tracer)
func (l *Logger) Zap() *zap.Logger {
	return l.l
}

func (l *Logger) Sync() error {
	return l.l.Sync()
}

func ParseLevel(text string) (Level, error) {
	return zapcore.ParseLevel(text)
}

var std = New(os.Stderr, InfoLevel, AddCallerSkip(1))

func Default() *Logger {
	return std
}

// ResetDefault replaces the default logger used by the package level functions.
// not safe for concurrent use
func ResetDefault(l *Logger) {
	std = l
	Debug = std.Debug
	Info = std.Info
	Warn = std.Warn
	Error = std.Error
	Fatal = std.Fatal
}

var (
	Debug = std.Debug
	Info  = std.Info
	Warn  = std.Warn
	Error = std.Error
	Fatal = std.Fatal
)

func Sync() error {
	if std != nil {
		return std.Sync()
	}
	return nil
}
