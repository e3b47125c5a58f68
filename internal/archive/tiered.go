package archive

import (
	"context"

	"github.com/rs/zerolog"
)

// TieredStore writes locally first, then mirrors to S3. Neither leg blocks
// the transcription pipeline; the S3 leg is a pure backup.
type TieredStore struct {
	local *LocalStore
	s3    *S3Store
	log   zerolog.Logger
}

// NewTieredStore creates a local-primary + S3-mirror archive.
func NewTieredStore(local *LocalStore, s3 *S3Store, log zerolog.Logger) *TieredStore {
	return &TieredStore{
		local: local,
		s3:    s3,
		log:   log.With().Str("component", "archive-tiered").Logger(),
	}
}

// Save writes the document to both legs.
func (s *TieredStore) Save(ctx context.Context, name string, doc any) {
	s.local.Save(ctx, name, doc)
	s.s3.Save(ctx, name, doc)
}

// Type returns the store type.
func (s *TieredStore) Type() string { return "tiered" }
