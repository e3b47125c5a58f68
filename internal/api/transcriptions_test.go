package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/snarg/stt-bench/internal/cache"
	"github.com/snarg/stt-bench/internal/catalog"
	"github.com/snarg/stt-bench/internal/media"
	"github.com/snarg/stt-bench/internal/transcribe"
)

type stubProvider struct {
	resp transcribe.Response
	err  error
}

func (p *stubProvider) Transcribe(_ context.Context, _ string, _ transcribe.Options) (*transcribe.Response, error) {
	if p.err != nil {
		return nil, p.err
	}
	r := p.resp
	return &r, nil
}

func (p *stubProvider) Name() string { return "stub" }

type testEnv struct {
	handler *TranscribeHandler
	cache   *cache.Store
}

func newTestEnv(t *testing.T, providers map[string]transcribe.Provider) *testEnv {
	t.Helper()

	audioDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(audioDir, "call.mp3"), []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	cat, err := catalog.New(audioDir, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	store, err := cache.New(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	d := transcribe.NewDispatcher(transcribe.DispatcherOptions{
		Cache:           store,
		Providers:       providers,
		TargetUploadMB:  24,
		ProviderTimeout: time.Minute,
		Log:             zerolog.Nop(),
	})

	return &testEnv{
		handler: NewTranscribeHandler(d, cat, store, "pt", zerolog.Nop()),
		cache:   store,
	}
}

func postTranscribe(t *testing.T, h *TranscribeHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/transcribe", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Transcribe(rec, req)
	return rec
}

func TestTranscribeValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"invalid_json", "{nope"},
		{"missing_file", `{"models":["whisper-1"]}`},
		{"missing_models", `{"file":"call.mp3"}`},
		{"unknown_file", `{"file":"ghost.mp3","models":["whisper-1"]}`},
		{"traversal_rejected", `{"file":"../call.mp3","models":["whisper-1"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postTranscribe(t, env.handler, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestTranscribeSuccess(t *testing.T) {
	env := newTestEnv(t, map[string]transcribe.Provider{
		"assemblyai": &stubProvider{resp: transcribe.Response{Text: "hello", Duration: 5}},
	})

	rec := postTranscribe(t, env.handler, `{"file":"call.mp3","models":["assemblyai-best"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp struct {
		File     string `json:"file"`
		Language string `json:"language"`
		Results  []struct {
			Model  string `json:"model"`
			State  string `json:"state"`
			Result *struct {
				Text   string `json:"text"`
				Cached bool   `json:"cached"`
			} `json:"result"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Language != "pt" {
		t.Errorf("default language not applied: %q", resp.Language)
	}
	if len(resp.Results) != 1 || resp.Results[0].State != "done" {
		t.Fatalf("results = %+v", resp.Results)
	}
	if resp.Results[0].Result.Text != "hello" {
		t.Errorf("text = %q", resp.Results[0].Result.Text)
	}
}

func TestTranscribeSingleModelErrorStatus(t *testing.T) {
	// No providers configured: a single-model request surfaces the
	// provider error as the response status.
	env := newTestEnv(t, map[string]transcribe.Provider{})

	rec := postTranscribe(t, env.handler, `{"file":"call.mp3","models":["whisper-1"]}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestTranscribeMixedOutcomesStay200(t *testing.T) {
	env := newTestEnv(t, map[string]transcribe.Provider{
		"assemblyai": &stubProvider{resp: transcribe.Response{Text: "ok", Duration: 3}},
		"gemini":     &stubProvider{err: errors.New("boom")},
	})

	rec := postTranscribe(t, env.handler,
		`{"file":"call.mp3","models":["assemblyai-best","gemini-2.0-flash"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with per-model outcomes", rec.Code)
	}

	var resp struct {
		Results []struct {
			State string `json:"state"`
			Error string `json:"error"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Results[0].State != "done" || resp.Results[1].State != "failed" {
		t.Errorf("states = %s, %s", resp.Results[0].State, resp.Results[1].State)
	}
	if !strings.Contains(resp.Results[1].Error, "boom") {
		t.Errorf("upstream error text lost: %q", resp.Results[1].Error)
	}
}

func TestClearCache(t *testing.T) {
	env := newTestEnv(t, nil)
	if err := env.cache.Put("abc123", map[string]string{"text": "x"}); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	env.handler.ClearCache(rec, httptest.NewRequest("POST", "/api/v1/cache/clear", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["cleared"] != 1 {
		t.Errorf("cleared = %d, want 1", resp["cleared"])
	}
	if env.cache.Len() != 0 {
		t.Error("cache not empty after clear")
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"input", &transcribe.InputError{Msg: "bad"}, http.StatusBadRequest},
		{"size", &media.SizeError{Msg: "too big"}, http.StatusRequestEntityTooLarge},
		{"provider", &transcribe.ProviderError{Provider: "openai", Err: errors.New("503")}, http.StatusBadGateway},
		{"unknown", errors.New("mystery"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusForError(tt.err); got != tt.want {
				t.Errorf("StatusForError = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestListModels(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := httptest.NewRecorder()
	env.handler.ListModels(rec, httptest.NewRequest("GET", "/api/v1/models", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Models []struct {
			ID       string `json:"id"`
			Provider string `json:"provider"`
		} `json:"models"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Models) != len(transcribe.Models) {
		t.Errorf("models = %d, want %d", len(resp.Models), len(transcribe.Models))
	}
}
