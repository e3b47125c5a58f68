package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/snarg/stt-bench/internal/cache"
	"github.com/snarg/stt-bench/internal/catalog"
	"github.com/snarg/stt-bench/internal/transcribe"
)

// TranscribeHandler serves the benchmark endpoints: model listing, the
// transcription fan-out itself, and cache administration.
type TranscribeHandler struct {
	dispatcher      *transcribe.Dispatcher
	catalog         *catalog.Catalog
	cache           *cache.Store
	defaultLanguage string
	log             zerolog.Logger
}

func NewTranscribeHandler(d *transcribe.Dispatcher, c *catalog.Catalog, store *cache.Store, defaultLanguage string, log zerolog.Logger) *TranscribeHandler {
	return &TranscribeHandler{
		dispatcher:      d,
		catalog:         c,
		cache:           store,
		defaultLanguage: defaultLanguage,
		log:             log.With().Str("component", "api").Logger(),
	}
}

// ListModels returns the static model table.
func (h *TranscribeHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"models": transcribe.Models})
}

type transcribeRequest struct {
	File         string   `json:"file"`
	Models       []string `json:"models"`
	Model        string   `json:"model,omitempty"` // shorthand for a single-model request
	Language     string   `json:"language,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
}

type transcribeResponse struct {
	File     string               `json:"file"`
	Language string               `json:"language,omitempty"`
	Results  []transcribe.Outcome `json:"results"`
}

// Transcribe fans a catalogued audio file out to the requested models.
// Per-model failures ride inside the results array; a single-model request
// that fails maps the pipeline error onto the response status instead.
func (h *TranscribeHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req transcribeRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.File == "" {
		WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	if len(req.Models) == 0 && req.Model != "" {
		req.Models = []string{req.Model}
	}
	if len(req.Models) == 0 {
		WriteError(w, http.StatusBadRequest, "at least one model is required")
		return
	}

	audioPath, err := h.catalog.Resolve(req.File)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	language := req.Language
	if language == "" {
		language = h.defaultLanguage
	}

	h.log.Info().
		Str("file", req.File).
		Strs("models", req.Models).
		Str("language", language).
		Msg("transcription batch started")

	outcomes := h.dispatcher.Run(r.Context(), transcribe.BatchRequest{
		AudioPath:    audioPath,
		Models:       req.Models,
		Language:     language,
		Instructions: req.Instructions,
	})

	if len(outcomes) == 1 && outcomes[0].State == transcribe.StateFailed {
		WriteError(w, StatusForError(outcomes[0].Err), outcomes[0].Error)
		return
	}

	WriteJSON(w, http.StatusOK, transcribeResponse{
		File:     req.File,
		Language: language,
		Results:  outcomes,
	})
}

// ClearCache removes every cached result.
func (h *TranscribeHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	cleared, err := h.cache.Clear()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "cache clear failed: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"cleared": cleared})
}
