package oracle

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"dreamgate/internal/logging"
)

// OllamaCLIClient implements Client using the ollama CLI subprocess.
// It executes `ollama run <model> <prompt>` and returns trimmed stdout.
type OllamaCLIClient struct {
	model string
	bin   string
}

// NewOllamaCLIClient creates a client for the given model.
func NewOllamaCLIClient(model string) *OllamaCLIClient {
	if model == "" {
		model = "qwen3:1.7b"
	}
	return &OllamaCLIClient{model: model, bin: "ollama"}
}

// Name identifies this backend.
func (c *OllamaCLIClient) Name() string {
	return "ollama/" + c.model
}

// Model returns the configured model name.
func (c *OllamaCLIClient) Model() string {
	return c.model
}

// Generate runs the ollama CLI with the prompt. A deadline on the derived
// context bounds the subprocess; on expiry the process is killed and the
// call reports *TimeoutError. Exec failures and nonzero exits report
// *ProcessError.
func (c *OllamaCLIClient) Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.bin, "run", c.model, prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	logging.OracleDebug("%s call took %v (err=%v)", c.Name(), time.Since(start), err)

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &TimeoutError{Backend: c.Name(), Limit: timeout}
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", &ProcessError{Backend: c.Name(), Message: "execution canceled"}
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", &ProcessError{Backend: c.Name(), Message: truncate(msg, 500)}
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", &ProcessError{Backend: c.Name(), Message: "empty response"}
	}
	return text, nil
}

// CheckBinary reports whether the ollama binary responds at all. Used by
// the stats/doctor output, not by the generation path.
func (c *OllamaCLIClient) CheckBinary(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := exec.CommandContext(ctx, c.bin, "--version").Run(); err != nil {
		return &ProcessError{Backend: c.Name(), Message: "ollama not available: " + err.Error()}
	}
	return nil
}
