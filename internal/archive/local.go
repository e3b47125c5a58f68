package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// LocalStore archives result documents to a local directory.
type LocalStore struct {
	dir string
	log zerolog.Logger
}

// NewLocalStore creates the results directory if needed.
func NewLocalStore(dir string, log zerolog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	return &LocalStore{dir: dir, log: log.With().Str("component", "archive").Logger()}, nil
}

// Save writes one document; failures are logged, never propagated.
func (s *LocalStore) Save(_ context.Context, name string, doc any) {
	data, err := marshalDoc(doc)
	if err != nil {
		s.log.Warn().Err(err).Str("name", name).Msg("failed to encode archive document")
		return
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		s.log.Warn().Err(err).Str("name", name).Msg("failed to write archive document")
	}
}

// Type returns the store type.
func (s *LocalStore) Type() string { return "local" }
