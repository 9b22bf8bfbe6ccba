package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestInitialize_ValidLevels(t *testing.T) {
	// Save original loggers and restore after test
	originalLog, originalAPI := Log, API
	defer func() { Log, API = originalLog, originalAPI }()

	levels := []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}

	for _, lvl := range levels {
		t.Run(lvl, func(t *testing.T) {
			err := Initialize(lvl, "")
			assert.NoError(t, err, "expected no error for level %s", lvl)
			assert.NotNil(t, Log, "Log should be initialized")
			assert.IsType(t, &zap.SugaredLogger{}, Log, "Log should be a SugaredLogger")
			assert.NotNil(t, API)

			assert.NotPanics(t, func() {
				Log.Infow("test log", "level", lvl)
			})
		})
	}
}

func TestInitialize_InvalidLevel(t *testing.T) {
	originalLog, originalAPI := Log, API
	defer func() { Log, API = originalLog, originalAPI }()

	err := Initialize("not-a-level", "")
	assert.Error(t, err, "expected error for invalid log level")
}

func TestInitialize_WithDir(t *testing.T) {
	originalLog, originalAPI := Log, API
	defer func() { Log, API = originalLog, originalAPI }()

	dir := t.TempDir()
	err := Initialize("info", dir)
	assert.NoError(t, err)

	Log.Infow("general line", "k", "v")
	API.Infow("api line", "path", "/api/sum")

	general, err := filepath.Glob(filepath.Join(dir, "general.log.*"))
	assert.NoError(t, err)
	assert.NotEmpty(t, general)

	api, err := filepath.Glob(filepath.Join(dir, "api.log.*"))
	assert.NoError(t, err)
	assert.NotEmpty(t, api)
}

func TestLog_NopBeforeInitialize(t *testing.T) {
	originalLog := Log
	defer func() { Log = originalLog }()

	// By default, Log is zap.NewNop().Sugar()
	assert.NotNil(t, Log)
	assert.IsType(t, &zap.SugaredLogger{}, Log)

	assert.NotPanics(t, func() {
		Log.Infow("nop logger test")
	})
}
