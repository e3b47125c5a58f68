package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func writeFile(t *testing.T, dir, name string, mod time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !mod.IsZero() {
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCatalogList(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeFile(t, dir, "old.mp3", now.Add(-time.Hour))
	writeFile(t, dir, "new.wav", now)
	writeFile(t, dir, "notes.txt", time.Time{})
	writeFile(t, dir, ".hidden.mp3", time.Time{})

	c, err := New(dir, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	entries, err := c.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (txt and dotfile excluded)", len(entries))
	}
	if entries[0].Name != "new.wav" {
		t.Errorf("newest first: got %q", entries[0].Name)
	}
	for _, e := range entries {
		if e.Name == "notes.txt" {
			t.Error("non-audio file listed")
		}
	}
}

func TestCatalogCachesUntilInvalidated(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.mp3", time.Time{})

	c, err := New(dir, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.List(context.Background()); err != nil {
		t.Fatal(err)
	}

	writeFile(t, dir, "b.mp3", time.Time{})

	entries, _ := c.List(context.Background())
	if len(entries) != 1 {
		t.Fatalf("cached listing grew without invalidation: %d entries", len(entries))
	}

	c.Invalidate()
	entries, _ = c.List(context.Background())
	if len(entries) != 2 {
		t.Fatalf("after invalidation entries = %d, want 2", len(entries))
	}
}

func TestCatalogResolve(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "call.mp3", time.Time{})

	c, err := New(dir, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	path, err := c.Resolve("call.mp3")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if path != filepath.Join(dir, "call.mp3") {
		t.Errorf("path = %q", path)
	}

	for _, bad := range []string{"", "../etc/passwd", "sub/call.mp3", ".hidden.mp3", "missing.mp3"} {
		if _, err := c.Resolve(bad); err == nil {
			t.Errorf("Resolve(%q) succeeded, want error", bad)
		}
	}
}

func TestWatcherInvalidates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.mp3", time.Time{})

	c, err := New(dir, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.List(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := NewWatcher(ctx, c, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	writeFile(t, dir, "b.mp3", time.Time{})

	deadline := time.After(3 * time.Second)
	for {
		entries, _ := c.List(context.Background())
		if len(entries) == 2 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("listing never picked up new file; entries = %d", len(entries))
		case <-time.After(50 * time.Millisecond):
		}
	}
}
