package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the global SugaredLogger instance.
// Initialized with a no-op logger until Initialize is called.
var Log *zap.SugaredLogger = zap.NewNop().Sugar()

// API receives one line per /api call.
var API *zap.SugaredLogger = zap.NewNop().Sugar()

const (
	rotationTime = 24 * time.Hour
	maxAge       = 7 * 24 * time.Hour
)

// Initialize sets up the global loggers with the given log level.
// When dir is not empty, general logs are also written to dir/general.log and
// API access logs to dir/api.log, both rotated daily.
func Initialize(level string, dir string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return err
	}

	if dir == "" {
		Log = logger.Sugar()
		API = logger.Named("api").Sugar()
		return nil
	}

	general, err := newRotatingWriter(dir, "general.log")
	if err != nil {
		return err
	}
	api, err := newRotatingWriter(dir, "api.log")
	if err != nil {
		return err
	}

	encoder := zapcore.NewJSONEncoder(cfg.EncoderConfig)
	logger = logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, zapcore.NewCore(encoder, zapcore.AddSync(general), cfg.Level))
	}))

	Log = logger.Sugar()
	API = zap.New(zapcore.NewCore(encoder, zapcore.AddSync(api), cfg.Level)).Named("api").Sugar()
	return nil
}

func newRotatingWriter(dir, name string) (*rotatelogs.RotateLogs, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(dir, name)
	return rotatelogs.New(
		path+".%Y%m%d",
		rotatelogs.WithLinkName(path),
		rotatelogs.WithRotationTime(rotationTime),
		rotatelogs.WithMaxAge(maxAge),
	)
}
