// Package cache is a content-addressed store of normalized transcription
// results. One JSON document per key; entries are never mutated and carry no
// TTL. Staleness is controlled entirely by the mtime component of the key.
package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Store persists one JSON document per cache key under a single directory.
// Writes are whole-entry and atomic (temp file + rename), so a concurrent
// reader never observes a partial entry. If two writers race on the same key
// the last write wins; cached content is a deterministic function of the key
// inputs, so either copy is valid.
type Store struct {
	dir string
	log zerolog.Logger
}

// New creates the cache directory if needed and returns a Store.
func New(dir string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{dir: dir, log: log.With().Str("component", "cache").Logger()}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get loads the entry for key into v. Returns false on a miss; a corrupt
// entry is treated as a miss rather than an error.
func (s *Store) Get(key string, v any) bool {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("discarding unreadable cache entry")
		return false
	}
	return true
}

// Put writes the entry for key. The document keeps UTF-8 text as-is (no HTML
// escaping) so non-Latin transcripts survive a round-trip byte-for-byte.
func (s *Store) Put(key string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp entry: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish entry: %w", err)
	}
	return nil
}

// Clear removes all entries unconditionally and returns the count removed.
func (s *Store) Clear() (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return 0, err
	}
	count := 0
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			s.log.Warn().Err(err).Str("path", m).Msg("failed to remove cache entry")
			continue
		}
		count++
	}
	s.log.Info().Int("cleared", count).Msg("cache cleared")
	return count, nil
}

// Len counts the entries currently on disk.
func (s *Store) Len() int {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return 0
	}
	return len(matches)
}
