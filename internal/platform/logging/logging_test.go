package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := New(Config{
		Level:    "debug",
		Dir:      tmpDir,
		Filename: "test.log",
		Console:  &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.FileExists(t, filepath.Join(tmpDir, "test.log"))

	assert.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}

func TestLogger_WritesFileAndConsole(t *testing.T) {
	tmpDir := t.TempDir()
	var console bytes.Buffer

	logger, err := New(Config{Level: "info", Dir: tmpDir, Filename: "info.log", Console: &console})
	require.NoError(t, err)

	logger.Info("test info message")
	logger.Warn("test warn message")
	logger.Error("test error message")
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(filepath.Join(tmpDir, "info.log"))
	require.NoError(t, err)
	for _, msg := range []string{"test info message", "test warn message", "test error message"} {
		assert.Contains(t, string(content), msg)
		assert.Contains(t, console.String(), msg)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var console bytes.Buffer
	logger, err := New(Config{Level: "warn", Console: &console})
	require.NoError(t, err)
	defer logger.Close()

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Warn("visible warn")

	out := console.String()
	assert.NotContains(t, out, "hidden debug")
	assert.NotContains(t, out, "hidden info")
	assert.Contains(t, out, "visible warn")
}

func TestLogger_FormatArgs(t *testing.T) {
	var console bytes.Buffer
	logger, err := New(Config{Level: "debug", Console: &console})
	require.NoError(t, err)
	defer logger.Close()

	logger.Info("fetched %d images from %s", 6, "upstream")
	assert.Contains(t, console.String(), "fetched 6 images from upstream")
}

func TestLogger_FieldMap(t *testing.T) {
	var console bytes.Buffer
	logger, err := New(Config{Level: "debug", Console: &console})
	require.NoError(t, err)
	defer logger.Close()

	logger.Info("request", map[string]interface{}{"path": "/api/cat", "status": 200})
	out := console.String()
	assert.Contains(t, out, "path=/api/cat")
	assert.Contains(t, out, "status=200")
	assert.Less(t, strings.Index(out, "path="), strings.Index(out, "status="))
}

func TestLogger_Tags(t *testing.T) {
	var console bytes.Buffer
	logger, err := New(Config{Level: "debug", Console: &console})
	require.NoError(t, err)
	defer logger.Close()

	logger.InfoTag("HTTP", "server listening on %d", 25000)
	logger.DebugTag("Gallery", "cleared container")
	logger.WarnTag("Upstream", "slow response")
	logger.ErrorTag("Proxy", "upstream failed")

	out := console.String()
	assert.Contains(t, out, "[HTTP] server listening on 25000")
	assert.Contains(t, out, "[Gallery] cleared container")
	assert.Contains(t, out, "[Upstream] slow response")
	assert.Contains(t, out, "[Proxy] upstream failed")
}

func TestFormatLog(t *testing.T) {
	assert.Equal(t, "[HTTP] ready", FormatLog("HTTP", "ready"))
	assert.Equal(t, "ready", FormatLog("", "ready"))
	assert.Equal(t, "[Gallery] done", FormatLog("HTTP", "[Gallery] done"))
}

func TestLogger_NilSafe(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.Info("nothing")
		logger.ErrorTag("HTTP", "nothing")
		_ = logger.Slog()
		_ = logger.Close()
	})
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.NotPanics(t, func() {
		logger.Error("dropped")
	})
	assert.NoError(t, logger.Close())
}

func TestLogger_ConcurrentWrites(t *testing.T) {
	tmpDir := t.TempDir()
	logger, err := New(Config{Level: "info", Dir: tmpDir, Filename: "concurrent.log", Console: &bytes.Buffer{}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				logger.Info("worker %d line %d", n, j)
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(filepath.Join(tmpDir, "concurrent.log"))
	require.NoError(t, err)
	assert.Equal(t, 100, strings.Count(string(content), "\n"))
}

func TestLogger_RotateAndClean(t *testing.T) {
	tmpDir := t.TempDir()
	logger, err := New(Config{Level: "info", Dir: tmpDir, Filename: "server.log", Console: &bytes.Buffer{}})
	require.NoError(t, err)
	defer logger.Close()

	stale := filepath.Join(tmpDir, "server-2000-01-01.log")
	require.NoError(t, os.WriteFile(stale, []byte("old\n"), 0o644))

	previous := logger.currentDate
	logger.Info("before rotation")
	logger.checkAndRotate(time.Now().AddDate(0, 0, 1))
	logger.Info("after rotation")

	assert.FileExists(t, filepath.Join(tmpDir, "server-"+previous+".log"))
	assert.NoFileExists(t, stale)

	content, err := os.ReadFile(filepath.Join(tmpDir, "server.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "after rotation")
	assert.NotContains(t, string(content), "before rotation")
}

func TestLogger_RotateAfterCloseIsNoop(t *testing.T) {
	tmpDir := t.TempDir()
	logger, err := New(Config{Level: "info", Dir: tmpDir, Filename: "server.log", Console: &bytes.Buffer{}})
	require.NoError(t, err)

	previous := logger.currentDate
	require.NoError(t, logger.Close())

	// A rotation that was already waiting on the lock when Close ran.
	logger.rotate(time.Now().AddDate(0, 0, 1).Format("2006-01-02"))
	logger.checkAndRotate(time.Now().AddDate(0, 0, 2))

	logger.mu.RLock()
	defer logger.mu.RUnlock()
	assert.Nil(t, logger.logFile)
	assert.Equal(t, previous, logger.currentDate)
	assert.NoFileExists(t, filepath.Join(tmpDir, "server-"+previous+".log"))
}

func TestDefaultLogger_ConcurrentAccess(t *testing.T) {
	saved := DefaultLogger()
	t.Cleanup(func() { SetDefault(saved) })

	first := Discard()
	SetDefault(first)

	second, err := New(Config{Console: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Same(t, first, DefaultLogger(), "New must not replace an installed default")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetDefault(second)
		}()
		go func() {
			defer wg.Done()
			_ = DefaultLogger()
		}()
	}
	wg.Wait()
	assert.Same(t, second, DefaultLogger())
}
