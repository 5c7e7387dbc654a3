package theme

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dreamgate/internal/config"
)

func selectorConfig() *config.Config {
	return &config.Config{
		Themes: []config.Theme{
			{ID: "love", Keywords: []string{"love"}, Symbols: []string{"hearts"}, Colors: []string{"warm"}},
			{ID: "void", Keywords: []string{"void"}, Symbols: []string{"missing"}, Colors: []string{"missing"}},
			{ID: "half", Keywords: []string{"half"}, Symbols: []string{"hearts"}, Colors: []string{"missing"}},
		},
		Symbols: config.SymbolConfig{
			Pools:    map[string][]string{"hearts": {"♥", "❤", "💝"}},
			Fallback: []string{"∞", "◎"},
		},
		Colors: config.ColorConfig{
			Palettes: map[string][]string{"warm": {"#e74c3c", "#ff6b9d"}},
			Fallback: "#7f8c8d",
		},
	}
}

func TestSelectorPick(t *testing.T) {
	t.Run("themed pick draws from the referenced pools", func(t *testing.T) {
		sel := NewSelector(selectorConfig(), rand.New(rand.NewSource(1)))
		symbol, color := sel.Pick("love")
		assert.Contains(t, []string{"♥", "❤", "💝"}, symbol)
		assert.Contains(t, []string{"#e74c3c", "#ff6b9d"}, color)
	})

	t.Run("None degrades to global fallbacks", func(t *testing.T) {
		sel := NewSelector(selectorConfig(), rand.New(rand.NewSource(1)))
		symbol, color := sel.Pick(None)
		assert.Contains(t, []string{"∞", "◎"}, symbol)
		assert.Equal(t, "#7f8c8d", color)
	})

	t.Run("missing pools degrade like None", func(t *testing.T) {
		sel := NewSelector(selectorConfig(), rand.New(rand.NewSource(1)))
		symbol, color := sel.Pick("void")
		assert.Contains(t, []string{"∞", "◎"}, symbol)
		assert.Equal(t, "#7f8c8d", color)
	})

	t.Run("degradation is independent per axis", func(t *testing.T) {
		sel := NewSelector(selectorConfig(), rand.New(rand.NewSource(1)))
		symbol, color := sel.Pick("half")
		assert.Contains(t, []string{"♥", "❤", "💝"}, symbol, "symbols stay themed")
		assert.Equal(t, "#7f8c8d", color, "color falls back alone")
	})

	t.Run("empty config still yields a valid pick", func(t *testing.T) {
		sel := NewSelector(&config.Config{}, rand.New(rand.NewSource(1)))
		symbol, color := sel.Pick("anything")
		assert.Equal(t, "∞", symbol)
		assert.Equal(t, "#7f8c8d", color)
	})

	t.Run("color always satisfies the hex invariant", func(t *testing.T) {
		sel := NewSelector(selectorConfig(), rand.New(rand.NewSource(7)))
		for _, id := range []string{"love", "void", "half", None, "unknown"} {
			_, color := sel.Pick(id)
			assert.True(t, config.IsHexColor(color), "theme %q produced color %q", id, color)
		}
	})

	t.Run("same seed reproduces identical draws", func(t *testing.T) {
		a := NewSelector(selectorConfig(), rand.New(rand.NewSource(42)))
		b := NewSelector(selectorConfig(), rand.New(rand.NewSource(42)))
		for i := 0; i < 20; i++ {
			s1, c1 := a.Pick("love")
			s2, c2 := b.Pick("love")
			require.Equal(t, s1, s2)
			require.Equal(t, c1, c2)
		}
	})
}

func TestSelectorPickTemplate(t *testing.T) {
	cfg := selectorConfig()
	cfg.Fallbacks = []config.FallbackTemplate{
		{Themes: []string{"love"}, Phrase: "tagged love", Reasoning: "r1"},
		{Phrase: "untagged", Reasoning: "r2"},
	}

	t.Run("tagged template preferred for its theme", func(t *testing.T) {
		sel := NewSelector(cfg, rand.New(rand.NewSource(1)))
		tmpl := sel.PickTemplate("love")
		assert.Equal(t, "tagged love", tmpl.Phrase)
	})

	t.Run("other themes get untagged templates", func(t *testing.T) {
		sel := NewSelector(cfg, rand.New(rand.NewSource(1)))
		tmpl := sel.PickTemplate("void")
		assert.Equal(t, "untagged", tmpl.Phrase)
	})

	t.Run("no templates at all uses the built-in default", func(t *testing.T) {
		sel := NewSelector(&config.Config{}, rand.New(rand.NewSource(1)))
		tmpl := sel.PickTemplate(None)
		assert.NotEmpty(t, tmpl.Phrase)
		assert.NotEmpty(t, tmpl.Reasoning)
	})
}

func TestDefaultConfigSelector(t *testing.T) {
	// Every theme in the default config must pick themed values without
	// touching the fallbacks.
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	sel := NewSelector(cfg, rand.New(rand.NewSource(3)))
	for _, th := range cfg.Themes {
		symbol, color := sel.Pick(th.ID)
		assert.NotEmpty(t, symbol)
		assert.True(t, config.IsHexColor(color))
	}
}
