package catalog

import (
	"context"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// DB is an optional secondary catalog source: a Postgres database maintained
// by an external recorder, holding one row per finished recording.
type DB struct {
	Pool *pgxpool.Pool
	log  zerolog.Logger
}

// Recording is one row from the recorder's recordings table.
type Recording struct {
	ID          int64     `json:"id"`
	Filename    string    `json:"filename"`
	DurationSec float64   `json:"duration_seconds"`
	CreatedAt   time.Time `json:"created_at"`
}

// Connect opens a pool against databaseURL and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string, log zerolog.Logger) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	cfg.MaxConns = 8
	cfg.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info().
		Str("url", maskDSN(databaseURL)).
		Int32("max_conns", cfg.MaxConns).
		Msg("recordings database connected")

	return &DB{Pool: pool, log: log.With().Str("component", "catalog-db").Logger()}, nil
}

// HealthCheck pings the pool with a short deadline.
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return db.Pool.Ping(ctx)
}

// RecentRecordings lists the newest recordings registered by the recorder.
func (db *DB) RecentRecordings(ctx context.Context, limit int) ([]Recording, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, filename, duration_seconds, created_at
		FROM recordings
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Recording
	for rows.Next() {
		var r Recording
		if err := rows.Scan(&r.ID, &r.Filename, &r.DurationSec, &r.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// Close shuts the pool down.
func (db *DB) Close() {
	db.log.Info().Msg("closing recordings database pool")
	db.Pool.Close()
}

func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		if _, hasPass := u.User.Password(); hasPass {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	return u.String()
}
