package catalog

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher invalidates the catalog's cached listing when the audio directory
// changes, so uploads dropped in by hand show up without a restart.
type Watcher struct {
	catalog *Catalog
	watcher *fsnotify.Watcher
	log     zerolog.Logger
}

// NewWatcher starts watching the catalog directory. Close the returned
// watcher on shutdown; it also stops when ctx is done.
func NewWatcher(ctx context.Context, c *Catalog, log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(c.dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		catalog: c,
		watcher: fsw,
		log:     log.With().Str("component", "catalog-watcher").Logger(),
	}
	go w.loop(ctx)

	w.log.Info().Str("dir", c.dir).Msg("watching audio directory")
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() {
	w.watcher.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !audioExts[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			w.log.Debug().Str("file", filepath.Base(event.Name)).Str("op", event.Op.String()).Msg("audio directory changed")
			w.catalog.Invalidate()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("fsnotify error")
		}
	}
}
