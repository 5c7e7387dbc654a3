package oracle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBin writes an executable shell script to stand in for ollama.
func fakeBin(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake binary scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ollama")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return path
}

func TestNewOllamaCLIClient(t *testing.T) {
	t.Run("empty model uses default", func(t *testing.T) {
		c := NewOllamaCLIClient("")
		assert.Equal(t, "qwen3:1.7b", c.Model())
	})

	t.Run("name includes the model", func(t *testing.T) {
		c := NewOllamaCLIClient("llama3")
		assert.Equal(t, "ollama/llama3", c.Name())
	})
}

func TestOllamaCLIClientGenerate(t *testing.T) {
	t.Run("stdout is returned trimmed", func(t *testing.T) {
		c := NewOllamaCLIClient("test")
		c.bin = fakeBin(t, `echo '  {"symbol":"x"}  '`)

		out, err := c.Generate(context.Background(), "prompt", time.Second)
		require.NoError(t, err)
		assert.Equal(t, `{"symbol":"x"}`, out)
	})

	t.Run("slow process reports TimeoutError", func(t *testing.T) {
		c := NewOllamaCLIClient("test")
		c.bin = fakeBin(t, "sleep 5")

		start := time.Now()
		_, err := c.Generate(context.Background(), "prompt", 100*time.Millisecond)
		elapsed := time.Since(start)

		var te *TimeoutError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, 100*time.Millisecond, te.Limit)
		assert.Less(t, elapsed, 2*time.Second, "the subprocess is killed at the deadline")
	})

	t.Run("nonzero exit reports ProcessError with stderr", func(t *testing.T) {
		c := NewOllamaCLIClient("test")
		c.bin = fakeBin(t, `echo "model not found" >&2; exit 1`)

		_, err := c.Generate(context.Background(), "prompt", time.Second)
		var pe *ProcessError
		require.ErrorAs(t, err, &pe)
		assert.Contains(t, pe.Message, "model not found")
	})

	t.Run("missing binary reports ProcessError", func(t *testing.T) {
		c := NewOllamaCLIClient("test")
		c.bin = filepath.Join(t.TempDir(), "no-such-binary")

		_, err := c.Generate(context.Background(), "prompt", time.Second)
		var pe *ProcessError
		assert.ErrorAs(t, err, &pe)
	})

	t.Run("empty stdout reports ProcessError", func(t *testing.T) {
		c := NewOllamaCLIClient("test")
		c.bin = fakeBin(t, "true")

		_, err := c.Generate(context.Background(), "prompt", time.Second)
		var pe *ProcessError
		require.ErrorAs(t, err, &pe)
		assert.Contains(t, pe.Message, "empty response")
	})

	t.Run("cancelled context reports ProcessError, not timeout", func(t *testing.T) {
		c := NewOllamaCLIClient("test")
		c.bin = fakeBin(t, "sleep 5")

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		_, err := c.Generate(ctx, "prompt", 10*time.Second)
		var te *TimeoutError
		assert.False(t, errors.As(err, &te))
		var pe *ProcessError
		assert.ErrorAs(t, err, &pe)
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijkl", 10))
}
