// Package logging builds the zap logger used by the CLI and the dashboard
// server.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/goliatone/go-tutordash/internal/config"
)

// New returns a logger for cfg. Output goes to stderr, or to a rotated file
// when cfg.File is set. The returned close func flushes and releases the file.
func New(cfg config.Log) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	if cfg.Development {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
	}
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	case "", "console":
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		return nil, nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	var (
		sink    zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
		release                     = func() error { return nil }
	)
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		sink = zapcore.AddSync(rotator)
		release = rotator.Close
	}

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.WarnLevel))
	} else {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	logger := zap.New(zapcore.NewCore(encoder, sink, level), opts...)
	closeFn := func() error {
		// Sync on stderr fails on some terminals; only the file matters.
		_ = logger.Sync()
		return release()
	}
	return logger, closeFn, nil
}
