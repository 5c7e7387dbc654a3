// Package theme maps free-form intent text onto the configured theme
// table and selects symbols and colors from the pools a theme references.
// Everything here is deterministic given the theme table and the injected
// random source, which keeps generation reproducible across runs.
package theme

import (
	"strings"

	"dreamgate/internal/config"
)

// None is the resolver result when no theme keyword matches.
const None = ""

// Resolve maps intent text to a theme id by keyword containment: each
// theme scores one point per keyword occurring as a substring of the
// lower-cased text, and the first theme in table order with the maximum
// nonzero score wins. Returns None when nothing scores.
//
// The table-order tie-break is the only disambiguation rule and must be
// preserved: earlier-declared themes beat later ones on equal score.
func Resolve(text string, themes []config.Theme) string {
	lower := strings.ToLower(text)

	best := None
	bestScore := 0
	for _, th := range themes {
		score := 0
		for _, kw := range th.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				score++
			}
		}
		// Strict > keeps the earliest theme on ties.
		if score > bestScore {
			best = th.ID
			bestScore = score
		}
	}
	return best
}
