package dream

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dreamgate/internal/config"
	"dreamgate/internal/oracle"
)

// stubClient scripts oracle behavior per call.
type stubClient struct {
	responses []stubResponse
	calls     int
}

type stubResponse struct {
	payload string
	err     error
}

func (s *stubClient) Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	r := s.responses[s.calls%len(s.responses)]
	s.calls++
	return r.payload, r.err
}

func (s *stubClient) Name() string { return "stub" }

func validPayload() string {
	return `{"symbol":"☯","phrase":"balance holds","color":"#4a90d9","reasoning":"Opposites complete each other and the circle closes without a seam."}`
}

func TestRunnerRun(t *testing.T) {
	cfg := config.Default()
	brain := &config.Brain{Intent: "seeking wisdom and truth"}

	t.Run("valid payload yields Success", func(t *testing.T) {
		client := &stubClient{responses: []stubResponse{{payload: validPayload()}}}
		r := NewRunner(client, time.Second, rand.New(rand.NewSource(1)))

		o := r.Run(context.Background(), brain, cfg)
		require.Equal(t, StatusSuccess, o.Status)
		require.NotNil(t, o.Artifact)
		assert.Equal(t, "☯", o.Artifact.Symbol)
		assert.Equal(t, ErrNone, o.ErrorKind)
		assert.Equal(t, "wisdom", o.Theme)
		assert.Equal(t, "wisdom", o.Concept)
		assert.NotEmpty(t, o.ID)
	})

	t.Run("timeout yields Fallback with Timeout kind", func(t *testing.T) {
		client := &stubClient{responses: []stubResponse{
			{err: &oracle.TimeoutError{Backend: "stub", Limit: time.Second}},
		}}
		r := NewRunner(client, time.Second, rand.New(rand.NewSource(1)))

		o := r.Run(context.Background(), brain, cfg)
		assert.Equal(t, StatusFallback, o.Status)
		assert.Equal(t, ErrTimeout, o.ErrorKind)
		require.NotNil(t, o.Artifact)
		assert.NoError(t, o.Artifact.Validate())
	})

	t.Run("process error yields Fallback with ProcessError kind", func(t *testing.T) {
		client := &stubClient{responses: []stubResponse{
			{err: &oracle.ProcessError{Backend: "stub", Message: "exec failed"}},
		}}
		r := NewRunner(client, time.Second, rand.New(rand.NewSource(1)))

		o := r.Run(context.Background(), brain, cfg)
		assert.Equal(t, StatusFallback, o.Status)
		assert.Equal(t, ErrProcess, o.ErrorKind)
		require.NotNil(t, o.Artifact)
		assert.NoError(t, o.Artifact.Validate())
	})

	t.Run("malformed color classifies as InvalidResponse", func(t *testing.T) {
		client := &stubClient{responses: []stubResponse{
			{payload: `{"symbol":"∞","phrase":"x","color":"not-a-color","reasoning":"y"}`},
		}}
		r := NewRunner(client, time.Second, rand.New(rand.NewSource(1)))

		o := r.Run(context.Background(), brain, cfg)
		assert.Equal(t, StatusFallback, o.Status)
		assert.Equal(t, ErrInvalidResponse, o.ErrorKind)
		require.NotNil(t, o.Artifact)
		assert.NoError(t, o.Artifact.Validate())
	})

	t.Run("non-JSON chatter classifies as InvalidResponse", func(t *testing.T) {
		client := &stubClient{responses: []stubResponse{{payload: "I would rather not."}}}
		r := NewRunner(client, time.Second, rand.New(rand.NewSource(1)))

		o := r.Run(context.Background(), brain, cfg)
		assert.Equal(t, StatusFallback, o.Status)
		assert.Equal(t, ErrInvalidResponse, o.ErrorKind)
	})

	t.Run("terse reasoning is enriched with the concept", func(t *testing.T) {
		client := &stubClient{responses: []stubResponse{
			{payload: `{"symbol":"☯","phrase":"p","color":"#4a90d9","reasoning":"short"}`},
		}}
		r := NewRunner(client, time.Second, rand.New(rand.NewSource(1)))

		o := r.Run(context.Background(), brain, cfg)
		require.Equal(t, StatusSuccess, o.Status)
		assert.Contains(t, o.Artifact.Reasoning, "short")
		assert.Contains(t, o.Artifact.Reasoning, "wisdom")
	})

	t.Run("long reasoning is left untouched", func(t *testing.T) {
		client := &stubClient{responses: []stubResponse{{payload: validPayload()}}}
		r := NewRunner(client, time.Second, rand.New(rand.NewSource(1)))

		o := r.Run(context.Background(), brain, cfg)
		require.Equal(t, StatusSuccess, o.Status)
		assert.Equal(t, "Opposites complete each other and the circle closes without a seam.",
			o.Artifact.Reasoning)
	})

	t.Run("outcome carries the full transcript", func(t *testing.T) {
		client := &stubClient{responses: []stubResponse{{payload: validPayload()}}}
		r := NewRunner(client, time.Second, rand.New(rand.NewSource(1)))

		o := r.Run(context.Background(), brain, cfg)
		require.Equal(t, StatusSuccess, o.Status)
		assert.Contains(t, o.Prompt, brain.Intent)
		assert.Equal(t, validPayload(), o.Raw)
	})

	t.Run("invalid payload keeps the raw response on the outcome", func(t *testing.T) {
		client := &stubClient{responses: []stubResponse{{payload: "I would rather not."}}}
		r := NewRunner(client, time.Second, rand.New(rand.NewSource(1)))

		o := r.Run(context.Background(), brain, cfg)
		assert.Equal(t, StatusFallback, o.Status)
		assert.Contains(t, o.Prompt, brain.Intent)
		assert.Equal(t, "I would rather not.", o.Raw)
	})

	t.Run("failed oracle call leaves the raw response empty", func(t *testing.T) {
		client := &stubClient{responses: []stubResponse{
			{err: &oracle.TimeoutError{Backend: "stub", Limit: time.Second}},
		}}
		r := NewRunner(client, time.Second, rand.New(rand.NewSource(1)))

		o := r.Run(context.Background(), brain, cfg)
		assert.Contains(t, o.Prompt, brain.Intent)
		assert.Empty(t, o.Raw)
	})

	t.Run("unthemed intent still completes", func(t *testing.T) {
		client := &stubClient{responses: []stubResponse{
			{err: &oracle.ProcessError{Backend: "stub", Message: "down"}},
		}}
		r := NewRunner(client, time.Second, rand.New(rand.NewSource(1)))

		o := r.Run(context.Background(), &config.Brain{Intent: "zxqv"}, cfg)
		assert.Equal(t, StatusFallback, o.Status)
		assert.Equal(t, "", o.Theme)
		require.NotNil(t, o.Artifact)
		assert.NoError(t, o.Artifact.Validate())
	})
}

func TestFailedOutcome(t *testing.T) {
	err := &config.ValidationError{Field: "themes", Reason: "empty"}
	o := FailedOutcome("stub", err, 5*time.Millisecond)

	assert.Equal(t, StatusFailed, o.Status)
	assert.Equal(t, ErrConfig, o.ErrorKind)
	assert.Equal(t, err, o.Err)
	assert.Nil(t, o.Artifact)
	assert.NotEmpty(t, o.ID)
}
