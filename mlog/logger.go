package mlog

import (
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogConfig struct {
	// Level, See also zapcore.ParseLevel.
	Level string `yaml:"level"`

	// File that logger will be writen into.
	// Default is stderr.
	File string `yaml:"file"`

	// Production enables json output.
	Production bool `yaml:"production"`
}

var (
	stderr = zapcore.Lock(os.Stderr)

	l atomic.Pointer[zap.Logger]
)

func init() {
	l.Store(zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), stderr, zap.InfoLevel)))
}

// NewLogger builds a logger from lc. The returned func closes the log
// file, it must be called once the logger is no longer used.
func NewLogger(lc *LogConfig) (*zap.Logger, func(), error) {
	lvl, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}

	var out zapcore.WriteSyncer
	closeFunc := func() {}
	if lf := lc.File; len(lf) > 0 {
		f, closeFile, err := zap.Open(lf)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = zapcore.Lock(f)
		closeFunc = closeFile
	} else {
		out = stderr
	}

	var enc zapcore.Encoder
	if lc.Production {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	return zap.New(zapcore.NewCore(enc, out, lvl)), closeFunc, nil
}

// L is a global logger.
func L() *zap.Logger {
	return l.Load()
}

// S is a global sugared logger.
func S() *zap.SugaredLogger {
	return L().Sugar()
}

// SetLogger replaces the global logger and returns a func that restores
// the previous one.
func SetLogger(lg *zap.Logger) (restore func()) {
	prev := l.Swap(lg)
	return func() { l.Store(prev) }
}
