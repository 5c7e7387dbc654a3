package echo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dreamgate/internal/dream"
	"dreamgate/internal/logging"
)

// Writer formats artifacts onto disk: a machine-readable output.json for
// the most recent artifact, and per-concept markdown echo files that
// accumulate across sessions.
type Writer struct {
	baseDir string
	now     func() time.Time
}

// NewWriter creates a writer rooted at baseDir. output.json lands at the
// root; echoes under baseDir/echoes, session transcripts under
// baseDir/sessions.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir, now: time.Now}
}

// WriteOutput replaces output.json with the given artifact.
func (w *Writer) WriteOutput(a *dream.Artifact) error {
	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	path := filepath.Join(w.baseDir, "output.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logging.EchoDebug("wrote %s", path)
	return nil
}

// AppendEcho appends one artifact entry to the concept's echo file,
// creating the file with its header on first write. revisions is the
// prior visit count for the concept, as reported by the journal.
func (w *Writer) AppendEcho(concept string, a *dream.Artifact, revisions int) error {
	dir := filepath.Join(w.baseDir, "echoes")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create echoes directory: %w", err)
	}

	path := filepath.Join(dir, conceptFileName(concept))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open echo file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat echo file: %w", err)
	}

	var b strings.Builder
	if info.Size() == 0 {
		fmt.Fprintf(&b, "# %s Echoes\n", titleCase(concept))
	}
	fmt.Fprintf(&b, "\n## %s\n\n", w.now().Format("2006-01-02 15:04:05"))
	if revisions > 0 {
		fmt.Fprintf(&b, "*This concept has been revisited %d times.*\n\n", revisions)
	}
	fmt.Fprintf(&b, "- Symbol: %s\n", a.Symbol)
	fmt.Fprintf(&b, "- Phrase: %s\n", a.Phrase)
	fmt.Fprintf(&b, "- Color: %s\n", a.Color)
	fmt.Fprintf(&b, "- Reasoning: %s\n", a.Reasoning)

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to append echo: %w", err)
	}
	logging.Echo("appended echo for concept %q (revisions=%d)", concept, revisions)
	return nil
}

// Session captures one attempt's full transcript for debugging.
type Session struct {
	AttemptID string    `json:"attempt_id"`
	Backend   string    `json:"backend"`
	Prompt    string    `json:"prompt"`
	Raw       string    `json:"raw_response"`
	Outcome   string    `json:"outcome"`
	Timestamp time.Time `json:"timestamp"`
}

// WriteSession persists one attempt transcript under sessions/,
// named by attempt id.
func (w *Writer) WriteSession(s Session) error {
	dir := filepath.Join(w.baseDir, "sessions")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = w.now()
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	path := filepath.Join(dir, s.AttemptID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// EchoPath returns the echo file path for a concept, whether or not it
// exists yet.
func (w *Writer) EchoPath(concept string) string {
	return filepath.Join(w.baseDir, "echoes", conceptFileName(concept))
}

// ListEchoes returns the concept names that have echo files, sorted by
// the filesystem's directory order.
func (w *Writer) ListEchoes() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(w.baseDir, "echoes"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list echoes: %w", err)
	}
	var concepts []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".md") {
			concepts = append(concepts, strings.TrimSuffix(name, ".md"))
		}
	}
	return concepts, nil
}

func conceptFileName(concept string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, concept)
	if safe == "" {
		safe = "dream"
	}
	return safe + ".md"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
