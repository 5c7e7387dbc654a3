package batch

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dreamgate/internal/dream"
)

// RunStats accumulates the outcomes of one batch run. A fresh value is
// created per run; stats are never shared across batches.
type RunStats struct {
	RunID      string
	Successes  int
	CacheHits  int
	Fallbacks  int
	Failures   int
	Elapsed    time.Duration
	ErrorKinds []dream.ErrorKind

	// Outcomes preserves per-source order: pass 1 in source order,
	// then pass 2 in source order when a comparison pass ran.
	Outcomes []dream.Outcome
}

func newRunStats() *RunStats {
	return &RunStats{RunID: uuid.NewString()}
}

func (s *RunStats) record(o dream.Outcome) {
	switch o.Status {
	case dream.StatusSuccess:
		s.Successes++
	case dream.StatusCacheHit:
		s.CacheHits++
	case dream.StatusFallback:
		s.Fallbacks++
	case dream.StatusFailed:
		s.Failures++
	}
	if o.ErrorKind != dream.ErrNone {
		s.ErrorKinds = append(s.ErrorKinds, o.ErrorKind)
	}
	s.Outcomes = append(s.Outcomes, o)
}

// Attempts returns the number of attempts recorded so far.
func (s *RunStats) Attempts() int {
	return len(s.Outcomes)
}

// AllFailed reports whether every recorded attempt ended in Failed.
func (s *RunStats) AllFailed() bool {
	return len(s.Outcomes) > 0 && s.Failures == len(s.Outcomes)
}

// String renders a one-line summary for logs and CLI output.
func (s *RunStats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %d attempts in %v (success=%d cache_hit=%d fallback=%d failed=%d)",
		s.RunID, s.Attempts(), s.Elapsed.Round(time.Millisecond),
		s.Successes, s.CacheHits, s.Fallbacks, s.Failures)
	if len(s.ErrorKinds) > 0 {
		kinds := make([]string, len(s.ErrorKinds))
		for i, k := range s.ErrorKinds {
			kinds[i] = k.String()
		}
		fmt.Fprintf(&b, " errors=[%s]", strings.Join(kinds, ","))
	}
	return b.String()
}
