// Package logger provides the prefixed, colored leveled logger used across the client.
package logger

import (
	"io"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const colorReset = "\033[0m"

var ErrEmptyPrefix = errors.New("logger prefix must not be empty")

// Loggers of different components share one rotating writer per file.
var (
	filesMu sync.Mutex
	files   = map[string]*lumberjack.Logger{}
)

func rotatingFile(o *options) *lumberjack.Logger {
	filesMu.Lock()
	defer filesMu.Unlock()
	if lj, ok := files[o.file]; ok {
		return lj
	}
	lj := &lumberjack.Logger{
		Filename:   o.file,
		MaxSize:    o.maxSizeMB,
		MaxBackups: o.maxBackups,
		MaxAge:     o.maxAgeDays,
	}
	files[o.file] = lj
	return lj
}

// Logger writes leveled messages tagged with a component prefix.
type Logger struct {
	sugar *zap.SugaredLogger
}

type options struct {
	file       string
	maxSizeMB  int
	maxBackups int
	maxAgeDays int
	level      zapcore.Level
}

// Option configures a Logger.
type Option func(*options)

// WithRotatingFile also writes plain (uncolored) log lines to a rotating file.
func WithRotatingFile(path string) Option {
	return func(o *options) {
		o.file = path
	}
}

// WithRotation overrides the rotation limits of the log file.
func WithRotation(maxSizeMB, maxBackups, maxAgeDays int) Option {
	return func(o *options) {
		o.maxSizeMB = maxSizeMB
		o.maxBackups = maxBackups
		o.maxAgeDays = maxAgeDays
	}
}

// WithDebug enables debug level output.
func WithDebug() Option {
	return func(o *options) {
		o.level = zapcore.DebugLevel
	}
}

// New creates a logger named prefix that writes colored console lines to w.
func New(prefix, color string, w io.Writer, opts ...Option) (*Logger, error) {
	if prefix == "" {
		return nil, ErrEmptyPrefix
	}

	o := &options{
		maxSizeMB:  10,
		maxBackups: 3,
		maxAgeDays: 7,
		level:      zapcore.InfoLevel,
	}
	for _, opt := range opts {
		opt(o)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig(color)), zapcore.AddSync(w), o.level),
	}
	if o.file != "" {
		file := zapcore.AddSync(rotatingFile(o))
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig("")), file, o.level))
	}

	l := zap.New(zapcore.NewTee(cores...)).Named(prefix)
	return &Logger{sugar: l.Sugar()}, nil
}

func encoderConfig(color string) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
		EncodeName: func(name string, enc zapcore.PrimitiveArrayEncoder) {
			if color == "" {
				enc.AppendString("[" + name + "]")
				return
			}
			enc.AppendString(color + "[" + name + "]" + colorReset)
		},
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string) {
	l.sugar.Debug(msg)
}

// Info logs an info message.
func (l *Logger) Info(msg string) {
	l.sugar.Info(msg)
}

// Warning logs a warning message.
func (l *Logger) Warning(msg string) {
	l.sugar.Warn(msg)
}

// Error logs an error message.
func (l *Logger) Error(msg string) {
	l.sugar.Error(msg)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
