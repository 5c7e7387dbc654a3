package theme

import (
	"regexp"
	"strings"

	"dreamgate/internal/config"
)

// DefaultConcept names the echo file when no concept can be extracted.
const DefaultConcept = "dream"

var wordRe = regexp.MustCompile(`\b\w+\b`)

var stopWords = map[string]bool{
	"this": true, "that": true, "with": true, "from": true, "they": true,
	"have": true, "will": true, "been": true, "the": true, "and": true,
	"for": true, "nor": true, "yet": true, "how": true, "what": true,
	"when": true, "where": true, "why": true, "who": true, "which": true,
	"both": true, "giver": true, "receiver": true, "explore": true,
	"essence": true, "transforms": true, "between": true, "through": true,
	"within": true, "without": true, "beyond": true, "above": true,
	"below": true,
}

// Words that make strong echo-file concepts regardless of theme.
var priorityConcepts = map[string]int{
	"love": 10, "wisdom": 10, "peace": 10, "harmony": 10,
	"forgiveness": 9, "transformation": 9, "balance": 9, "energy": 9,
	"healing": 8, "growth": 8, "journey": 8, "power": 8,
	"light": 7, "shadow": 7, "dream": 7, "spirit": 7,
	"consciousness": 6, "awareness": 6, "presence": 6, "flow": 6,
}

// ExtractConcept derives the concept under which an artifact is filed.
// A matching theme keyword wins; otherwise the highest-priority
// meaningful word is used, defaulting to "dream".
func ExtractConcept(intent string, themes []config.Theme) string {
	lower := strings.ToLower(intent)

	for _, th := range themes {
		for _, kw := range th.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return th.ID
			}
		}
	}

	bestWord := ""
	bestScore := 0
	for _, word := range wordRe.FindAllString(lower, -1) {
		score := 0
		switch {
		case priorityConcepts[word] > 0:
			score = priorityConcepts[word]
		case len(word) > 4 && !stopWords[word]:
			score = 5
		case len(word) > 3 && !stopWords[word]:
			score = 3
		}
		if score > bestScore {
			bestWord = word
			bestScore = score
		}
	}
	if bestWord == "" {
		return DefaultConcept
	}
	return bestWord
}
