// Package archive keeps a per-run record of every fresh transcription result
// as a standalone JSON document, separate from the cache: cache entries are
// keyed by inputs and overwritten only by identical content, while the
// archive is an append-only history for later comparison.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/snarg/stt-bench/internal/config"
)

// Store writes archived result documents. Archival is best-effort
// everywhere: a failed archive write never fails the transcription.
type Store interface {
	// Save persists one result document under a generated name.
	Save(ctx context.Context, name string, doc any)

	// Type returns "local" or "tiered".
	Type() string
}

// New creates an archive store from config: local directory always, with an
// S3 mirror layered on when configured.
func New(cfg config.S3Config, resultsDir string, log zerolog.Logger) (Store, error) {
	local, err := NewLocalStore(resultsDir, log)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled() {
		return local, nil
	}

	s3store, err := NewS3Store(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("S3 archive init failed: %w", err)
	}

	// Startup validation: verify credentials and bucket access.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s3store.HeadBucket(ctx); err != nil {
		return nil, fmt.Errorf("S3 archive startup check failed (bucket=%q endpoint=%q): %w",
			cfg.Bucket, cfg.Endpoint, err)
	}
	log.Info().Str("bucket", cfg.Bucket).Str("endpoint", cfg.Endpoint).Msg("S3 archive mirror verified")

	return NewTieredStore(local, s3store, log), nil
}

// EntryName builds the archive document name for one result:
// <audio stem>_<model>_<timestamp>.json.
func EntryName(audioStem, model string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s.json", audioStem, model, now.Format("20060102_150405"))
}

// marshalDoc renders a document the same way the cache does: indented,
// UTF-8 preserved.
func marshalDoc(doc any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
