// Package cache provides a two-tier content-addressed cache for parsed
// configurations. The hot tier is an in-process map keyed by source id;
// the warm tier persists one JSON file per content hash, written
// temp-then-rename so readers never observe a torn entry. The cache is an
// optimization, never a source of truth: a corrupt warm entry degrades to
// a miss and the config is re-parsed from source.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"dreamgate/internal/config"
	"dreamgate/internal/logging"
)

// Tier classifies where a Get was served from.
type Tier int

const (
	// TierHit means the in-memory entry matched the current content hash.
	TierHit Tier = iota
	// TierWarm means the entry was loaded from the persisted tier.
	TierWarm
	// TierMiss means the source was parsed from scratch.
	TierMiss
)

// String returns the tier name used in logs and stats output.
func (t Tier) String() string {
	switch t {
	case TierHit:
		return "hit"
	case TierWarm:
		return "warm"
	default:
		return "miss"
	}
}

// Entry is one cached configuration. Entries are never mutated in place:
// a changed source produces a new entry that replaces the old one.
type Entry struct {
	ContentHash string
	Config      *config.Config
	LoadedAt    time.Time
}

// ConfigCache resolves source ids to parsed configurations.
type ConfigCache struct {
	warmDir string

	mu      sync.RWMutex
	entries map[string]*Entry // source id -> entry

	group singleflight.Group // dedupes concurrent loads per content hash

	hits     atomic.Int64
	warmHits atomic.Int64
	misses   atomic.Int64
}

// New creates a cache whose warm tier lives in warmDir. The directory is
// created if missing.
func New(warmDir string) (*ConfigCache, error) {
	if warmDir == "" {
		return nil, fmt.Errorf("cache directory path required")
	}
	if err := os.MkdirAll(warmDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", warmDir, err)
	}
	return &ConfigCache{
		warmDir: warmDir,
		entries: make(map[string]*Entry),
	}, nil
}

// Get resolves the config for a source file. It hashes the current source
// bytes, serves the in-memory entry on a hash match, falls back to the
// persisted tier, and finally parses the source, populating both tiers.
// Parse failures surface as *config.ValidationError.
func (c *ConfigCache) Get(sourceID string) (*config.Config, Tier, error) {
	raw, err := os.ReadFile(sourceID)
	if err != nil {
		return nil, TierMiss, fmt.Errorf("failed to read source %s: %w", sourceID, err)
	}
	hash := contentHash(raw)

	c.mu.RLock()
	entry, ok := c.entries[sourceID]
	c.mu.RUnlock()
	if ok && entry.ContentHash == hash {
		c.hits.Add(1)
		logging.CacheDebug("HIT %s (hash %s)", filepath.Base(sourceID), hash[:8])
		return entry.Config, TierHit, nil
	}

	// Concurrent gets for the same content share one load.
	type loaded struct {
		cfg  *config.Config
		tier Tier
	}
	v, err, _ := c.group.Do(hash, func() (interface{}, error) {
		if cfg := c.loadWarm(hash); cfg != nil {
			return loaded{cfg, TierWarm}, nil
		}
		cfg, err := config.Parse(raw)
		if err != nil {
			return nil, err
		}
		c.persist(hash, cfg)
		return loaded{cfg, TierMiss}, nil
	})
	if err != nil {
		return nil, TierMiss, err
	}
	res := v.(loaded)

	c.mu.Lock()
	c.entries[sourceID] = &Entry{ContentHash: hash, Config: res.cfg, LoadedAt: time.Now()}
	c.mu.Unlock()

	switch res.tier {
	case TierWarm:
		c.warmHits.Add(1)
		logging.CacheDebug("WARM %s (hash %s)", filepath.Base(sourceID), hash[:8])
	default:
		c.misses.Add(1)
		logging.CacheDebug("MISS %s (parsed, hash %s)", filepath.Base(sourceID), hash[:8])
	}
	return res.cfg, res.tier, nil
}

// Invalidate drops the in-memory entry for a source. The persisted entry
// keyed by the old hash stays in place; being content-addressed it is
// simply unreferenced, not stale.
func (c *ConfigCache) Invalidate(sourceID string) {
	c.mu.Lock()
	delete(c.entries, sourceID)
	c.mu.Unlock()
	logging.CacheDebug("INVALIDATED %s", filepath.Base(sourceID))
}

// InvalidateAll drops every in-memory entry.
func (c *ConfigCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]*Entry)
	c.mu.Unlock()
	logging.Cache("invalidated all entries")
}

// Stats holds monotonically increasing counters since process start or
// the last Reset.
type Stats struct {
	Hits     int64 `json:"hits"`
	WarmHits int64 `json:"warm_hits"`
	Misses   int64 `json:"misses"`
}

// HitRate returns the fraction of gets served from either tier, as a
// percentage. Returns 0 when no lookups have happened.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.WarmHits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits+s.WarmHits) / float64(total) * 100
}

// String returns a one-line summary for stats output.
func (s Stats) String() string {
	return fmt.Sprintf("hits=%d warm=%d misses=%d hitRate=%.1f%%", s.Hits, s.WarmHits, s.Misses, s.HitRate())
}

// Stats returns the current counters.
func (c *ConfigCache) Stats() Stats {
	return Stats{
		Hits:     c.hits.Load(),
		WarmHits: c.warmHits.Load(),
		Misses:   c.misses.Load(),
	}
}

// Reset zeroes the counters. Entries are untouched.
func (c *ConfigCache) Reset() {
	c.hits.Store(0)
	c.warmHits.Store(0)
	c.misses.Store(0)
}

// Size returns the number of in-memory entries.
func (c *ConfigCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// WarmEntries returns the number of persisted entries on disk. The warm
// tier outlives the process, so this counts entries from prior runs too.
func (c *ConfigCache) WarmEntries() (int, error) {
	entries, err := os.ReadDir(c.warmDir)
	if err != nil {
		return 0, fmt.Errorf("failed to list cache directory: %w", err)
	}
	n := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			n++
		}
	}
	return n, nil
}

// loadWarm reads a persisted entry. Any problem - unreadable file, bad
// JSON, a config that no longer validates - is treated as a miss.
func (c *ConfigCache) loadWarm(hash string) *config.Config {
	data, err := os.ReadFile(c.warmPath(hash))
	if err != nil {
		return nil
	}
	var cfg config.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		logging.Get(logging.CategoryCache).Warn("corrupt warm entry %s: %v", hash[:8], err)
		return nil
	}
	if err := cfg.Validate(); err != nil {
		logging.Get(logging.CategoryCache).Warn("invalid warm entry %s: %v", hash[:8], err)
		return nil
	}
	return &cfg
}

// persist writes one warm entry atomically. Failures are logged and
// swallowed; losing the warm tier must never be fatal.
func (c *ConfigCache) persist(hash string, cfg *config.Config) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		logging.Get(logging.CategoryCache).Warn("failed to marshal warm entry %s: %v", hash[:8], err)
		return
	}

	tmp, err := os.CreateTemp(c.warmDir, hash+".tmp-*")
	if err != nil {
		logging.Get(logging.CategoryCache).Warn("failed to create temp entry %s: %v", hash[:8], err)
		return
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		logging.Get(logging.CategoryCache).Warn("failed to write warm entry %s: %v", hash[:8], err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return
	}
	// Rename is atomic at the entry level: readers see the old complete
	// entry or the new complete one, never a partial write.
	if err := os.Rename(tmpName, c.warmPath(hash)); err != nil {
		os.Remove(tmpName)
		logging.Get(logging.CategoryCache).Warn("failed to publish warm entry %s: %v", hash[:8], err)
	}
}

func (c *ConfigCache) warmPath(hash string) string {
	return filepath.Join(c.warmDir, hash+".json")
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
