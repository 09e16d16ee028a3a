// Package logging builds the zap loggers used by both binaries.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Production is the environment name that switches to JSON logs.
const Production = "production"

// New builds a logger for env. Entries below ERROR go to stdout and ERROR or
// above to stderr. If logPath is non-empty, all entries are also appended to
// that file without colour codes. The returned cleanup flushes the logger and
// closes the file.
func New(env, logPath string) (*zap.Logger, func(), error) {
	var (
		level   zapcore.Level
		encCfg  zapcore.EncoderConfig
		newEnc  func(zapcore.EncoderConfig) zapcore.Encoder
		options []zap.Option
	)

	if env == Production {
		level = zapcore.InfoLevel
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		newEnc = zapcore.NewJSONEncoder
	} else {
		level = zapcore.DebugLevel
		encCfg = zap.NewDevelopmentEncoderConfig()
		newEnc = zapcore.NewConsoleEncoder
		options = append(options, zap.Development())
	}

	fileEncCfg := encCfg
	termEncCfg := encCfg
	if env != Production {
		termEncCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= level && l < zapcore.ErrorLevel
	})
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.ErrorLevel
	})

	cores := []zapcore.Core{
		zapcore.NewCore(newEnc(termEncCfg), zapcore.Lock(os.Stdout), low),
		zapcore.NewCore(newEnc(termEncCfg), zapcore.Lock(os.Stderr), high),
	}

	closeFile := func() {}
	if logPath != "" {
		sink, closeSink, err := zap.Open(logPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		closeFile = closeSink
		cores = append(cores, zapcore.NewCore(newEnc(fileEncCfg), sink, level))
	}

	options = append(options, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	logger := zap.New(zapcore.NewTee(cores...), options...)

	cleanup := func() {
		_ = logger.Sync()
		closeFile()
	}
	return logger, cleanup, nil
}
