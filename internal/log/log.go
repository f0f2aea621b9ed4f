// Package log builds the zap loggers used across intcode.
package log

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var levelMap = map[string]zapcore.Level{
	"debug":  zapcore.DebugLevel,
	"info":   zapcore.InfoLevel,
	"warn":   zapcore.WarnLevel,
	"error":  zapcore.ErrorLevel,
	"dpanic": zapcore.DPanicLevel,
	"panic":  zapcore.PanicLevel,
	"fatal":  zapcore.FatalLevel,
}

// ValidLevel reports whether lvl names a level. The empty string is valid
// and means info.
func ValidLevel(lvl string) bool {
	if lvl == "" {
		return true
	}
	_, ok := levelMap[lvl]
	return ok
}

func getLoggerLevel(lvl string) zapcore.Level {
	if level, ok := levelMap[lvl]; ok {
		return level
	}
	return zapcore.InfoLevel
}

// Logger is a zap logger whose level can change after construction.
type Logger struct {
	*zap.Logger
	atom zap.AtomicLevel
}

// New returns a console logger writing to stderr at the given level.
func New(level string) *Logger {
	return NewWriter(os.Stderr, level)
}

// NewWriter returns a console logger writing to w.
func NewWriter(w io.Writer, level string) *Logger {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
	}
	config.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncodeCaller = zapcore.ShortCallerEncoder

	atom := zap.NewAtomicLevel()
	atom.SetLevel(getLoggerLevel(level))

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(config),
		zapcore.AddSync(w),
		atom,
	)
	return &Logger{
		Logger: zap.New(core),
		atom:   atom,
	}
}

// SetLevel changes the level; unknown names mean info.
func (l *Logger) SetLevel(level string) {
	l.atom.SetLevel(getLoggerLevel(level))
}

// Level returns the current level.
func (l *Logger) Level() zapcore.Level {
	return l.atom.Level()
}
