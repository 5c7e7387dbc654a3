package theme

import (
	"math/rand"

	"dreamgate/internal/config"
	"dreamgate/internal/logging"
)

// Selector draws symbols and colors from the pools a theme references.
// The random source is injected so a fixed seed produces identical draws.
type Selector struct {
	cfg *config.Config
	rng *rand.Rand
}

// NewSelector creates a selector over the given config and random source.
func NewSelector(cfg *config.Config, rng *rand.Rand) *Selector {
	return &Selector{cfg: cfg, rng: rng}
}

// Pick returns one symbol and one color for the theme. For None (or a
// theme whose pools are all empty or missing) it degrades to the global
// fallback, independently per axis: a theme with usable symbol pools but
// an empty palette still gets themed symbols. The symbol is always drawn
// before the color so seeded runs stay byte-identical.
func (s *Selector) Pick(themeID string) (symbol, color string) {
	symbols, colors := s.poolsFor(themeID)

	if len(symbols) == 0 {
		symbols = s.cfg.Symbols.Fallback
	}
	if len(symbols) == 0 {
		symbols = []string{"∞"}
	}
	symbol = symbols[s.rng.Intn(len(symbols))]

	if len(colors) > 0 {
		color = colors[s.rng.Intn(len(colors))]
	} else if s.cfg.Colors.Fallback != "" {
		// The global color fallback is a single value, not a pool.
		color = s.cfg.Colors.Fallback
	} else {
		color = "#7f8c8d"
	}

	logging.Get(logging.CategoryTheme).Debug("selected symbol=%s color=%s theme=%q", symbol, color, themeID)
	return symbol, color
}

// poolsFor concatenates the pools the theme references, preserving pool
// declaration order with no deduplication.
func (s *Selector) poolsFor(themeID string) (symbols, colors []string) {
	if themeID == None {
		return nil, nil
	}
	th, ok := s.cfg.ThemeByID(themeID)
	if !ok {
		return nil, nil
	}
	for _, pool := range th.Symbols {
		symbols = append(symbols, s.cfg.Symbols.Pools[pool]...)
	}
	for _, palette := range th.Colors {
		colors = append(colors, s.cfg.Colors.Palettes[palette]...)
	}
	return symbols, colors
}

// PickTemplate chooses a fallback phrase/reasoning template for the
// theme. Theme-tagged templates are preferred; when none match, the
// untagged (theme-agnostic) templates are used; when the config carries
// no templates at all, a built-in default keeps this operation total.
func (s *Selector) PickTemplate(themeID string) config.FallbackTemplate {
	var tagged, untagged []config.FallbackTemplate
	for _, tmpl := range s.cfg.Fallbacks {
		if len(tmpl.Themes) == 0 {
			untagged = append(untagged, tmpl)
			continue
		}
		for _, id := range tmpl.Themes {
			if id == themeID {
				tagged = append(tagged, tmpl)
				break
			}
		}
	}

	candidates := tagged
	if len(candidates) == 0 {
		candidates = untagged
	}
	if len(candidates) == 0 {
		return config.FallbackTemplate{
			Phrase:    "The dream continues beyond understanding.",
			Reasoning: "When symbols fail, the infinite persists.",
		}
	}
	return candidates[s.rng.Intn(len(candidates))]
}
