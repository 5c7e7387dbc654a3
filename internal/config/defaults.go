package config

// Default returns the built-in configuration: the stock theme table,
// symbol pools, and palettes. Used when no config file exists yet and as
// the template written by `dreamgate brain init`.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Backend: "ollama",
			Name:    "qwen3:1.7b",
			Timeout: "60s",
		},
		Themes: []Theme{
			{
				ID:       "love",
				Keywords: []string{"love", "heart", "compassion", "kindness", "forgiveness"},
				Symbols:  []string{"mystical", "sacred"},
				Colors:   []string{"warm", "spirit"},
			},
			{
				ID:       "wisdom",
				Keywords: []string{"wisdom", "knowledge", "understanding", "learning", "truth"},
				Symbols:  []string{"cosmic", "ancient", "ethereal"},
				Colors:   []string{"cosmic", "twilight"},
			},
			{
				ID:       "peace",
				Keywords: []string{"peace", "calm", "balance", "harmony", "stillness"},
				Symbols:  []string{"sacred", "flow"},
				Colors:   []string{"cool", "ethereal"},
			},
			{
				ID:       "transformation",
				Keywords: []string{"growth", "change", "transformation", "journey", "evolution"},
				Symbols:  []string{"transformation", "nature", "elemental"},
				Colors:   []string{"nature", "aurora"},
			},
			{
				ID:       "power",
				Keywords: []string{"power", "strength", "energy", "force", "intensity"},
				Symbols:  []string{"energy", "elemental"},
				Colors:   []string{"fire", "warm"},
			},
			{
				ID:       "mystery",
				Keywords: []string{"mystery", "unknown", "hidden", "secret", "veil"},
				Symbols:  []string{"mystical", "celestial", "cosmic"},
				Colors:   []string{"twilight", "mystical"},
			},
			{
				ID:       "quantum",
				Keywords: []string{"quantum", "science", "mathematics", "logic"},
				Symbols:  []string{"quantum", "geometric"},
				Colors:   []string{"cosmic", "cool"},
			},
		},
		Symbols: SymbolConfig{
			Pools: map[string][]string{
				"sacred":         {"☯", "✡", "⚛", "☥", "☸", "✝", "☦"},
				"cosmic":         {"∞", "✦", "✧", "☽", "☾", "◯", "☉", "✯", "✰"},
				"geometric":      {"◊", "▲", "∆", "◈", "⟁", "⬟", "⬢", "◇"},
				"elemental":      {"🔥", "💧", "🌍", "💨", "⚡", "❄", "🌊"},
				"mystical":       {"🔮", "🦋", "🕊", "🐉", "🌸", "✨"},
				"ancient":        {"⚜", "☬", "◉", "⚫", "⚪"},
				"energy":         {"⚡", "💫", "✨", "⭐", "💎", "💠"},
				"celestial":      {"☄", "🌌", "🌠", "☀", "🌙"},
				"nature":         {"🌲", "🌳", "🌷", "🌾", "🌱", "🍀"},
				"transformation": {"🦋", "🐛", "🦅", "🕊", "🐍", "🦎"},
				"quantum":        {"⟨", "⟩", "∴", "∵", "∀", "∃", "⊗", "⊕"},
				"flow":           {"∞", "∿", "〰", "≈", "⟁", "≋", "∼"},
				"ethereal":       {"※", "⁂", "°", "˚", "∘", "∙", "⊹", "✧"},
			},
			Fallback: []string{"∞", "◎", "✧", "≋", "⬢"},
		},
		Colors: ColorConfig{
			Palettes: map[string][]string{
				"cosmic":   {"#1a1a2e", "#16213e", "#0f3460", "#533483", "#7209b7"},
				"mystical": {"#8e7cc3", "#9b59b6", "#663399", "#6a0572", "#ba68c8"},
				"nature":   {"#27ae60", "#2ecc71", "#1abc9c", "#16a085", "#52b788"},
				"warm":     {"#e74c3c", "#c0392b", "#d35400", "#e67e22", "#f39c12"},
				"cool":     {"#3498db", "#2980b9", "#34495e", "#1abc9c", "#45b7d1"},
				"ethereal": {"#ecf0f1", "#bdc3c7", "#95a5a6", "#7f8c8d", "#c7ceea"},
				"twilight": {"#5f27cd", "#341f97", "#2e86ab", "#4834d4", "#686de0"},
				"aurora":   {"#f8b195", "#f67280", "#c06c84", "#6c5ce7", "#74b9ff"},
				"fire":     {"#ff006e", "#fb5607", "#ffbe0b", "#fb8500", "#dc2f02"},
				"spirit":   {"#e0aaff", "#c77dff", "#9d4edd", "#560bad", "#3c096c"},
			},
			Fallback: "#7f8c8d",
		},
		Prompts: PromptConfig{
			BaseTemplate: "You are an ancient symbolic oracle.\n\nIntent: {intent}\nStyle: {style}\n\n" +
				"Respond with ONLY valid JSON:\n" +
				"{\"symbol\": \"single unicode glyph\", \"phrase\": \"one sentence\", " +
				"\"color\": \"#rrggbb\", \"reasoning\": \"brief explanation\"}",
			Variations: []string{
				"Channel the cosmic wisdom through crystal and starlight.",
				"Weave your response between worlds, where symbols dance.",
				"Divine the patterns within this intent; let phi and pi guide you.",
				"Let fire, water, earth, and air speak through your selection.",
			},
		},
		Fallbacks: []FallbackTemplate{
			{
				Phrase:    "The dream continues beyond understanding.",
				Reasoning: "When symbols fail, the infinite persists.",
			},
			{
				Phrase:    "In silence, all answers emerge.",
				Reasoning: "The centered circle represents completeness in the void.",
			},
			{
				Themes:    []string{"love"},
				Phrase:    "The heart knows truths the mind cannot fathom.",
				Reasoning: "Compassion flows like rivers returning to the ocean.",
			},
			{
				Themes:    []string{"wisdom"},
				Phrase:    "Wisdom emerges from the silence between thoughts.",
				Reasoning: "The wise see patterns where others see chaos.",
			},
			{
				Themes:    []string{"peace"},
				Phrase:    "In the center of the storm lies perfect calm.",
				Reasoning: "Balance is the dance between holding and releasing.",
			},
			{
				Themes:    []string{"transformation"},
				Phrase:    "Every ending births a new beginning.",
				Reasoning: "The butterfly remembers being a caterpillar in its dreams.",
			},
			{
				Themes:    []string{"power", "quantum"},
				Phrase:    "Patterns emerge where chaos once seemed absolute.",
				Reasoning: "Divine mathematics governs the flow of dreams.",
			},
			{
				Themes:    []string{"mystery"},
				Phrase:    "The universe whispers through symbols ancient and true.",
				Reasoning: "Vision clarifies when we gaze beyond the veil.",
			},
		},
		Batch: BatchConfig{
			MaxSources: DefaultMaxSources,
		},
	}
}
