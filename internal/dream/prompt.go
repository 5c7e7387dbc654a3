package dream

import (
	"math/rand"
	"strings"

	"dreamgate/internal/config"
)

// BuildPrompt assembles the oracle prompt from the base template and an
// optionally prepended variation. Variation choice is cosmetic only; it
// never affects whether a response validates.
func BuildPrompt(brain *config.Brain, prompts config.PromptConfig, rng *rand.Rand) string {
	template := prompts.BaseTemplate
	if template == "" {
		template = config.Default().Prompts.BaseTemplate
	}

	if len(prompts.Variations) > 0 {
		variation := prompts.Variations[rng.Intn(len(prompts.Variations))]
		template = variation + "\n\n" + template
	}

	return strings.NewReplacer(
		"{intent}", brain.Intent,
		"{style}", brain.Style,
	).Replace(template)
}
