package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func writeAudio(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte("not really audio"), 0o644); err != nil {
		t.Fatalf("write audio fixture: %v", err)
	}
	return p
}

func TestDeriveKey(t *testing.T) {
	audio := writeAudio(t, "meeting.m4a")

	t.Run("idempotent", func(t *testing.T) {
		k1 := DeriveKey(audio, "whisper-1", "pt", "names: Nelson")
		k2 := DeriveKey(audio, "whisper-1", "pt", "names: Nelson")
		if k1 != k2 {
			t.Errorf("keys differ for identical inputs: %q vs %q", k1, k2)
		}
	})

	t.Run("fixed_length", func(t *testing.T) {
		k := DeriveKey(audio, "whisper-1", "", "")
		if len(k) != 16 {
			t.Errorf("key length = %d, want 16", len(k))
		}
	})

	t.Run("input_sensitivity", func(t *testing.T) {
		base := DeriveKey(audio, "whisper-1", "pt", "hint")
		if k := DeriveKey(audio, "gpt-4o-transcribe", "pt", "hint"); k == base {
			t.Error("model change did not change key")
		}
		if k := DeriveKey(audio, "whisper-1", "en", "hint"); k == base {
			t.Error("language change did not change key")
		}
		if k := DeriveKey(audio, "whisper-1", "pt", "other hint"); k == base {
			t.Error("instruction change did not change key")
		}
	})

	t.Run("mtime_invalidates", func(t *testing.T) {
		before := DeriveKey(audio, "whisper-1", "", "")
		newTime := time.Now().Add(2 * time.Hour)
		if err := os.Chtimes(audio, newTime, newTime); err != nil {
			t.Fatalf("Chtimes: %v", err)
		}
		after := DeriveKey(audio, "whisper-1", "", "")
		if before == after {
			t.Error("mtime change did not change key")
		}
	})

	t.Run("missing_file_still_keyed", func(t *testing.T) {
		k := DeriveKey("/nonexistent/audio.m4a", "whisper-1", "", "")
		if len(k) != 16 {
			t.Errorf("key length = %d, want 16", len(k))
		}
	})
}

type record struct {
	Model  string  `json:"model"`
	Text   string  `json:"text"`
	Cents  float64 `json:"estimated_cost_cents"`
	Cached bool    `json:"cached"`
}

func TestStoreRoundTrip(t *testing.T) {
	s := newTestStore(t)

	in := record{Model: "gemini-2.0-flash", Text: "reunião de trabalho — ação", Cents: 1.25}
	if err := s.Put("abcdef0123456789", in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var out record
	if !s.Get("abcdef0123456789", &out) {
		t.Fatal("Get: expected hit")
	}
	if out != in {
		t.Errorf("round-trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestStoreMiss(t *testing.T) {
	s := newTestStore(t)
	var out record
	if s.Get("0000000000000000", &out) {
		t.Error("expected miss for unknown key")
	}
}

func TestStoreCorruptEntryIsMiss(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.path("deadbeefdeadbeef"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt entry: %v", err)
	}
	var out record
	if s.Get("deadbeefdeadbeef", &out) {
		t.Error("expected corrupt entry to read as miss")
	}
}

func TestStoreClear(t *testing.T) {
	s := newTestStore(t)
	for _, k := range []string{"1111111111111111", "2222222222222222", "3333333333333333"} {
		if err := s.Put(k, record{Model: "whisper-1"}); err != nil {
			t.Fatalf("Put %s: %v", k, err)
		}
	}
	if got := s.Len(); got != 3 {
		t.Fatalf("Len = %d, want 3", got)
	}

	n, err := s.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear = %d, want 3", n)
	}
	if got := s.Len(); got != 0 {
		t.Errorf("Len after clear = %d, want 0", got)
	}
}

func TestStoreUTF8Preserved(t *testing.T) {
	s := newTestStore(t)
	in := record{Text: "ação, coração, 日本語 — «quotes»"}
	if err := s.Put("feedfacefeedface", in); err != nil {
		t.Fatalf("Put: %v", err)
	}
	var out record
	if !s.Get("feedfacefeedface", &out) {
		t.Fatal("expected hit")
	}
	if out.Text != in.Text {
		t.Errorf("text mangled: got %q, want %q", out.Text, in.Text)
	}
}
