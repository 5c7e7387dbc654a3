// Package dream runs one end-to-end generation attempt: resolve the
// theme, build a prompt, invoke the oracle under a timeout, validate the
// payload, and fall back to a deterministic local artifact on any
// failure. An attempt always terminates with a usable result unless the
// configuration itself is broken.
package dream

import (
	"encoding/json"
	"fmt"
	"strings"

	"dreamgate/internal/config"
)

// Artifact is the four-field structured result of one generation
// attempt. Immutable once produced.
type Artifact struct {
	Symbol    string `json:"symbol"`
	Phrase    string `json:"phrase"`
	Color     string `json:"color"`
	Reasoning string `json:"reasoning"`
}

// Validate checks the structural invariant: all four fields present and
// the color matching #rrggbb. A failing color is a parse failure, never
// silently coerced.
func (a *Artifact) Validate() error {
	if strings.TrimSpace(a.Symbol) == "" {
		return fmt.Errorf("missing symbol")
	}
	if strings.TrimSpace(a.Phrase) == "" {
		return fmt.Errorf("missing phrase")
	}
	if strings.TrimSpace(a.Reasoning) == "" {
		return fmt.Errorf("missing reasoning")
	}
	if !config.IsHexColor(a.Color) {
		return fmt.Errorf("color %q is not a #rrggbb value", a.Color)
	}
	return nil
}

// ParsePayload extracts the artifact from raw oracle output. Models wrap
// the JSON in prose, so the payload is taken from the first '{' to the
// last '}' in the text. Extra keys are ignored; a missing or malformed
// required field fails parsing.
func ParsePayload(raw string) (*Artifact, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var a Artifact
	if err := json.Unmarshal([]byte(raw[start:end+1]), &a); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}
