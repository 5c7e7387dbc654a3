package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Brain holds one generation request: the intent to dream about and the
// stylistic register for the oracle.
type Brain struct {
	Intent string `json:"intent"`
	Style  string `json:"style"`
}

// LoadBrain reads a brain file (JSON, as in brain.json).
func LoadBrain(path string) (*Brain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read brain %s: %w", path, err)
	}
	var b Brain
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, &ValidationError{Field: filepath.Base(path), Reason: err.Error()}
	}
	if strings.TrimSpace(b.Intent) == "" {
		return nil, &ValidationError{Field: filepath.Base(path), Reason: "intent is required"}
	}
	return &b, nil
}

// Save writes the brain as indented JSON.
func (b *Brain) Save(path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal brain: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write brain: %w", err)
	}
	return nil
}

// DiscoverBrains finds all brain*.json files in dir, keyed by file stem.
// Results are returned in sorted name order so batch runs are stable.
func DiscoverBrains(dir string) (map[string]string, []string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "brain*.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan brain configs: %w", err)
	}
	brains := make(map[string]string, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), ".json")
		brains[name] = m
		names = append(names, name)
	}
	sort.Strings(names)
	return brains, names, nil
}
