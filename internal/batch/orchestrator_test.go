package batch

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"dreamgate/internal/cache"
	"dreamgate/internal/config"
	"dreamgate/internal/dream"
	"dreamgate/internal/oracle"
)

func TestMain(m *testing.M) {
	// go.opencensus.io (via google.golang.org/genai) starts a worker
	// goroutine at package init that can never be stopped.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// scriptedBackend returns each response in order, wrapping around.
type scriptedBackend struct {
	name      string
	responses []scriptedResponse
	calls     int
}

type scriptedResponse struct {
	payload string
	err     error
}

func (b *scriptedBackend) Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	r := b.responses[b.calls%len(b.responses)]
	b.calls++
	return r.payload, r.err
}

func (b *scriptedBackend) Name() string { return b.name }

func successBackend(name string) *scriptedBackend {
	return &scriptedBackend{name: name, responses: []scriptedResponse{{
		payload: `{"symbol":"☯","phrase":"balance holds","color":"#4a90d9","reasoning":"The circle closes without a seam, and nothing is left outside it."}`,
	}}}
}

func timeoutBackend(name string) *scriptedBackend {
	return &scriptedBackend{name: name, responses: []scriptedResponse{{
		err: &oracle.TimeoutError{Backend: name, Limit: time.Second},
	}}}
}

func writeConfig(t *testing.T, dir, name, keywords string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := "themes:\n  - id: love\n    keywords: [" + keywords + "]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestOrchestrator(t *testing.T, opts ...Option) *Orchestrator {
	t.Helper()
	cc, err := cache.New(filepath.Join(t.TempDir(), "warm"))
	require.NoError(t, err)
	return New(cc, rand.New(rand.NewSource(99)), opts...)
}

var testBrain = &config.Brain{Intent: "love beyond measure"}

func TestRunBatch(t *testing.T) {
	t.Run("mixed batch: success, timeout, config error", func(t *testing.T) {
		dir := t.TempDir()
		s1 := writeConfig(t, dir, "a.yaml", "love")
		s2 := writeConfig(t, dir, "b.yaml", "love, heart")
		s3 := filepath.Join(dir, "c.yaml")
		require.NoError(t, os.WriteFile(s3, []byte("themes: []\n"), 0644))

		backend := &scriptedBackend{name: "stub", responses: []scriptedResponse{
			{payload: successBackend("stub").responses[0].payload},
			{err: &oracle.TimeoutError{Backend: "stub", Limit: time.Second}},
		}}

		orch := newTestOrchestrator(t, WithTimeout(time.Second))
		stats, err := orch.RunBatch(context.Background(), testBrain, []string{s1, s2, s3}, []oracle.Client{backend})
		require.NoError(t, err, "one failed source never fails the batch")
		require.NotNil(t, stats)

		assert.Equal(t, 3, stats.Attempts())
		assert.Equal(t, 1, stats.Successes)
		assert.Equal(t, 1, stats.Fallbacks)
		assert.Equal(t, 1, stats.Failures)
		assert.Equal(t, []dream.ErrorKind{dream.ErrTimeout, dream.ErrConfig}, stats.ErrorKinds)

		// Order is preserved: outcome 3 is the config error.
		assert.Equal(t, dream.StatusFailed, stats.Outcomes[2].Status)
		assert.Error(t, stats.Outcomes[2].Err)
		assert.Equal(t, 2, backend.calls, "config errors never reach the backend")
	})

	t.Run("repeat run reports cache hits", func(t *testing.T) {
		dir := t.TempDir()
		src := writeConfig(t, dir, "a.yaml", "love")

		orch := newTestOrchestrator(t, WithTimeout(time.Second))
		backend := successBackend("stub")

		stats, err := orch.RunBatch(context.Background(), testBrain, []string{src}, []oracle.Client{backend})
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Successes)

		stats, err = orch.RunBatch(context.Background(), testBrain, []string{src}, []oracle.Client{backend})
		require.NoError(t, err)
		assert.Equal(t, 1, stats.CacheHits)
		assert.Equal(t, 0, stats.Successes)
	})

	t.Run("comparison pass shares the cache", func(t *testing.T) {
		dir := t.TempDir()
		s1 := writeConfig(t, dir, "a.yaml", "love")
		s2 := writeConfig(t, dir, "b.yaml", "love, heart")

		orch := newTestOrchestrator(t, WithTimeout(time.Second))
		first := successBackend("first")
		second := successBackend("second")

		stats, err := orch.RunBatch(context.Background(), testBrain, []string{s1, s2}, []oracle.Client{first, second})
		require.NoError(t, err)
		require.Equal(t, 4, stats.Attempts())

		// Pass 1 parses, pass 2 is served from the cache.
		assert.Equal(t, 2, stats.Successes)
		assert.Equal(t, 2, stats.CacheHits)
		assert.Equal(t, "first", stats.Outcomes[0].Backend)
		assert.Equal(t, "second", stats.Outcomes[2].Backend)
	})

	t.Run("oversized batch is rejected up front", func(t *testing.T) {
		dir := t.TempDir()
		sources := []string{
			writeConfig(t, dir, "a.yaml", "love"),
			writeConfig(t, dir, "b.yaml", "love"),
			writeConfig(t, dir, "c.yaml", "love"),
		}

		orch := newTestOrchestrator(t, WithMaxSources(2))
		backend := successBackend("stub")

		stats, err := orch.RunBatch(context.Background(), testBrain, sources, []oracle.Client{backend})
		assert.ErrorIs(t, err, ErrBatchTooLarge)
		assert.Nil(t, stats)
		assert.Zero(t, backend.calls)
	})

	t.Run("total failure surfaces ErrAllAttemptsFailed", func(t *testing.T) {
		dir := t.TempDir()
		bad := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("themes: []\n"), 0644))

		orch := newTestOrchestrator(t)
		stats, err := orch.RunBatch(context.Background(), testBrain, []string{bad}, []oracle.Client{successBackend("stub")})
		assert.ErrorIs(t, err, ErrAllAttemptsFailed)
		require.NotNil(t, stats)
		assert.Equal(t, 1, stats.Failures)
	})

	t.Run("no backends is a validation error", func(t *testing.T) {
		orch := newTestOrchestrator(t)
		_, err := orch.RunBatch(context.Background(), testBrain, nil, nil)
		assert.Error(t, err)
	})

	t.Run("cancellation stops between attempts", func(t *testing.T) {
		dir := t.TempDir()
		src := writeConfig(t, dir, "a.yaml", "love")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		orch := newTestOrchestrator(t)
		stats, err := orch.RunBatch(ctx, testBrain, []string{src}, []oracle.Client{successBackend("stub")})
		assert.ErrorIs(t, err, context.Canceled)
		require.NotNil(t, stats)
		assert.Zero(t, stats.Attempts())
	})

	t.Run("same seed reproduces identical fallback artifacts", func(t *testing.T) {
		dir := t.TempDir()
		sources := []string{
			writeConfig(t, dir, "a.yaml", "love"),
			writeConfig(t, dir, "b.yaml", "love, heart"),
		}

		run := func() *RunStats {
			cc, err := cache.New(filepath.Join(t.TempDir(), "warm"))
			require.NoError(t, err)
			orch := New(cc, rand.New(rand.NewSource(7)), WithTimeout(time.Second))
			stats, err := orch.RunBatch(context.Background(), testBrain, sources, []oracle.Client{timeoutBackend("stub")})
			require.NoError(t, err)
			return stats
		}

		first := run()
		second := run()
		require.Equal(t, first.Attempts(), second.Attempts())
		for i := range first.Outcomes {
			require.NotNil(t, first.Outcomes[i].Artifact)
			assert.Equal(t, *first.Outcomes[i].Artifact, *second.Outcomes[i].Artifact)
		}
	})
}

func TestRunStatsString(t *testing.T) {
	stats := newRunStats()
	stats.record(dream.Outcome{Status: dream.StatusSuccess})
	stats.record(dream.Outcome{Status: dream.StatusFallback, ErrorKind: dream.ErrTimeout})
	stats.Elapsed = 1500 * time.Millisecond

	s := stats.String()
	assert.Contains(t, s, "2 attempts")
	assert.Contains(t, s, "success=1")
	assert.Contains(t, s, "fallback=1")
	assert.Contains(t, s, "timeout")
}
