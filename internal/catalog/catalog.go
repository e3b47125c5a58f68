// Package catalog lists the audio files available for benchmarking. The
// primary source is a flat local directory; an optional Postgres source
// exposes recordings registered by an external recorder.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/snarg/stt-bench/internal/media"
)

// audioExts are the file extensions the catalog considers audio.
var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".mp4":  true,
	".aac":  true,
	".ogg":  true,
	".opus": true,
	".flac": true,
	".webm": true,
}

// Entry describes one catalogued audio file.
type Entry struct {
	Name        string    `json:"name"`
	SizeBytes   int64     `json:"size_bytes"`
	Size        string    `json:"size"`
	DurationSec float64   `json:"duration_seconds"`
	Duration    string    `json:"duration"`
	ModTime     time.Time `json:"modified_at"`
}

// Catalog scans a directory for audio files and caches the listing. The
// cached listing stays valid until Invalidate is called, normally by the
// directory watcher.
type Catalog struct {
	dir string
	log zerolog.Logger

	mu      sync.Mutex
	entries []Entry
	valid   bool
}

// New creates a catalog over dir, creating it if needed.
func New(dir string, log zerolog.Logger) (*Catalog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	return &Catalog{dir: dir, log: log.With().Str("component", "catalog").Logger()}, nil
}

// Dir returns the catalogued directory.
func (c *Catalog) Dir() string { return c.dir }

// List returns the catalogued audio files, newest first. The scan probes each
// file's duration, so a cold listing of a large directory can take a while;
// subsequent calls are served from cache until the directory changes.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid {
		out := make([]Entry, len(c.entries))
		copy(out, c.entries)
		return out, nil
	}

	dirents, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("read audio dir: %w", err)
	}

	var entries []Entry
	for _, de := range dirents {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		if !audioExts[strings.ToLower(filepath.Ext(de.Name()))] {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		dur := media.Duration(ctx, filepath.Join(c.dir, de.Name()))
		entries = append(entries, Entry{
			Name:        de.Name(),
			SizeBytes:   info.Size(),
			Size:        formatSize(info.Size()),
			DurationSec: dur,
			Duration:    media.FormatDuration(dur),
			ModTime:     info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ModTime.After(entries[j].ModTime)
	})

	c.entries = entries
	c.valid = true
	c.log.Debug().Int("files", len(entries)).Msg("catalog scanned")

	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// Invalidate discards the cached listing; the next List rescans.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}

// Resolve maps a bare file name to its absolute path inside the catalog
// directory. Names carrying path separators or traversal are rejected so
// callers can pass client input straight through.
func (c *Catalog) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid audio file name: %q", name)
	}
	path := filepath.Join(c.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("audio file not found: %s", name)
	}
	return path, nil
}

func formatSize(bytes int64) string {
	switch {
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(bytes)/(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
