package dream

import (
	"context"
	"errors"
	"math/rand"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"dreamgate/internal/config"
	"dreamgate/internal/logging"
	"dreamgate/internal/oracle"
	"dreamgate/internal/theme"
)

// Status classifies an attempt outcome.
type Status int

const (
	// StatusSuccess means the oracle returned a valid payload.
	StatusSuccess Status = iota
	// StatusCacheHit means the oracle succeeded and the configuration
	// was served from the hot cache tier.
	StatusCacheHit
	// StatusFallback means the oracle failed and the local fallback
	// produced the artifact.
	StatusFallback
	// StatusFailed means not even the fallback could run, which only
	// happens on configuration errors.
	StatusFailed
)

// String returns the status name used in stats and logs.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusCacheHit:
		return "cache_hit"
	case StatusFallback:
		return "fallback"
	default:
		return "failed"
	}
}

// ErrorKind classifies why an attempt needed the fallback or failed.
type ErrorKind int

const (
	ErrNone ErrorKind = iota
	ErrTimeout
	ErrProcess
	ErrInvalidResponse
	ErrConfig
)

// String returns the error kind name used in stats and logs.
func (k ErrorKind) String() string {
	switch k {
	case ErrTimeout:
		return "timeout"
	case ErrProcess:
		return "process_error"
	case ErrInvalidResponse:
		return "invalid_response"
	case ErrConfig:
		return "config_error"
	default:
		return "none"
	}
}

// Outcome is the immutable record of one attempt.
type Outcome struct {
	ID        string
	Status    Status
	Artifact  *Artifact
	Theme     string
	Concept   string
	Backend   string
	Elapsed   time.Duration
	ErrorKind ErrorKind
	Err       error // set for StatusFailed, nil otherwise

	// Prompt and Raw carry the transcript of the oracle exchange. Raw is
	// empty when the call itself failed.
	Prompt string
	Raw    string
}

// Runner drives one generation attempt per Run call. The random source
// is injected so seeded runs reproduce both selection and fallback
// choices byte-for-byte.
type Runner struct {
	backend oracle.Client
	timeout time.Duration
	rng     *rand.Rand
}

// NewRunner creates a runner against the given backend. timeout bounds
// each oracle call.
func NewRunner(backend oracle.Client, timeout time.Duration, rng *rand.Rand) *Runner {
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	return &Runner{backend: backend, timeout: timeout, rng: rng}
}

// Run executes one attempt: resolve theme, build prompt, invoke the
// oracle, validate, and fall back on any oracle trouble. Timeout,
// process, and invalid-response failures are absorbed here and always
// yield a fallback artifact; they never propagate as errors.
func (r *Runner) Run(ctx context.Context, brain *config.Brain, cfg *config.Config) Outcome {
	start := time.Now()
	log := logging.Get(logging.CategoryDream)

	themeID := theme.Resolve(brain.Intent, cfg.Themes)
	concept := theme.ExtractConcept(brain.Intent, cfg.Themes)
	sel := theme.NewSelector(cfg, r.rng)
	prompt := BuildPrompt(brain, cfg.Prompts, r.rng)

	log.Debug("attempt: theme=%q concept=%s backend=%s", themeID, concept, r.backend.Name())

	outcome := Outcome{
		ID:      uuid.NewString(),
		Theme:   themeID,
		Concept: concept,
		Backend: r.backend.Name(),
		Prompt:  prompt,
	}

	raw, err := r.backend.Generate(ctx, prompt, r.timeout)
	outcome.Raw = raw
	if err != nil {
		outcome.ErrorKind = classifyOracleError(err)
		outcome.Status = StatusFallback
		outcome.Artifact = Fallback(themeID, sel)
		outcome.Elapsed = time.Since(start)
		log.Info("oracle failed (%s), fallback artifact produced", outcome.ErrorKind)
		return outcome
	}

	artifact, err := ParsePayload(raw)
	if err != nil {
		outcome.ErrorKind = ErrInvalidResponse
		outcome.Status = StatusFallback
		outcome.Artifact = Fallback(themeID, sel)
		outcome.Elapsed = time.Since(start)
		log.Info("invalid oracle payload (%v), fallback artifact produced", err)
		return outcome
	}

	enrichReasoning(artifact, concept)
	outcome.Status = StatusSuccess
	outcome.Artifact = artifact
	outcome.Elapsed = time.Since(start)
	log.Debug("attempt succeeded in %v", outcome.Elapsed)
	return outcome
}

// FailedOutcome records an attempt that could not run at all, which is
// the terminal state reserved for configuration errors.
func FailedOutcome(backend string, err error, elapsed time.Duration) Outcome {
	return Outcome{
		ID:        uuid.NewString(),
		Status:    StatusFailed,
		Backend:   backend,
		Elapsed:   elapsed,
		ErrorKind: ErrConfig,
		Err:       err,
	}
}

func classifyOracleError(err error) ErrorKind {
	var te *oracle.TimeoutError
	if errors.As(err, &te) {
		return ErrTimeout
	}
	return ErrProcess
}

// enrichReasoning pads terse oracle reasoning with the extracted concept,
// matching the long-standing output texture of echo files.
func enrichReasoning(a *Artifact, concept string) {
	if utf8.RuneCountInString(a.Reasoning) >= 50 {
		return
	}
	a.Reasoning += " This symbol resonates with the deep currents of " + concept +
		", bridging the seen and unseen realms."
}
