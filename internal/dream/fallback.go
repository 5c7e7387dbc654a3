package dream

import (
	"fmt"

	"dreamgate/internal/theme"
)

// Fallback produces a complete, always-valid artifact with no oracle
// call: symbol and color from the theme's pools, phrase and reasoning
// from the theme-tagged templates. This is the operation that guarantees
// an attempt always terminates with a usable result, so it must never
// fail - the selector degrades to built-in defaults at every step.
func Fallback(themeID string, sel *theme.Selector) *Artifact {
	symbol, color := sel.Pick(themeID)
	tmpl := sel.PickTemplate(themeID)

	reasoning := tmpl.Reasoning
	if themeID != theme.None {
		reasoning = fmt.Sprintf("Theme %q resonates through symbolic selection. %s", themeID, reasoning)
	}

	return &Artifact{
		Symbol:    symbol,
		Phrase:    tmpl.Phrase,
		Color:     color,
		Reasoning: reasoning,
	}
}
