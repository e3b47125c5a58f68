package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/snarg/stt-bench/internal/catalog"
)

// AudioHandler serves the audio catalog: the local directory listing, an
// optional recordings database, and the raw file bytes for playback.
type AudioHandler struct {
	catalog *catalog.Catalog
	db      *catalog.DB // nil when no recordings database is configured
	log     zerolog.Logger
}

func NewAudioHandler(c *catalog.Catalog, db *catalog.DB, log zerolog.Logger) *AudioHandler {
	return &AudioHandler{
		catalog: c,
		db:      db,
		log:     log.With().Str("component", "api").Logger(),
	}
}

type audioListResponse struct {
	Files      []catalog.Entry     `json:"files"`
	Recordings []catalog.Recording `json:"recordings,omitempty"`
}

// List returns the catalogued audio files, plus recent recordings when a
// recordings database is configured.
func (h *AudioHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.catalog.List(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "catalog scan failed: "+err.Error())
		return
	}

	resp := audioListResponse{Files: files}
	if files == nil {
		resp.Files = []catalog.Entry{}
	}

	if h.db != nil {
		limit := 50
		if n, ok := QueryInt(r, "limit"); ok && n > 0 {
			limit = n
		}
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		recs, err := h.db.RecentRecordings(ctx, limit)
		if err != nil {
			h.log.Warn().Err(err).Msg("recordings query failed")
		} else {
			resp.Recordings = recs
		}
	}

	WriteJSON(w, http.StatusOK, resp)
}

// Serve streams one catalogued audio file for playback.
func (h *AudioHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name, ok := QueryString(r, "name")
	if !ok {
		WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	path, err := h.catalog.Resolve(name)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	http.ServeFile(w, r, path)
}
