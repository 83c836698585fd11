// Package logging builds the application's zap logger. The terminal belongs
// to the UI, so records go to a size-rotated file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 5
	maxBackups = 3
	maxAgeDays = 28
)

type Options struct {
	File  string
	Debug bool
}

// New returns a JSON logger writing to opts.File. The returned close func
// syncs the logger and releases the file.
func New(opts Options) (*zap.Logger, func() error, error) {
	if opts.File == "" {
		return nil, nil, fmt.Errorf("log file path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Debug {
		level.SetLevel(zapcore.DebugLevel)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(rotator),
		level,
	)
	logger := zap.New(core, zap.AddCaller())

	closeFn := func() error {
		_ = logger.Sync()
		return rotator.Close()
	}
	return logger, closeFn, nil
}
