package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/snarg/stt-bench/internal/api"
	"github.com/snarg/stt-bench/internal/archive"
	"github.com/snarg/stt-bench/internal/cache"
	"github.com/snarg/stt-bench/internal/catalog"
	"github.com/snarg/stt-bench/internal/config"
	"github.com/snarg/stt-bench/internal/media"
	"github.com/snarg/stt-bench/internal/transcribe"
)

var version = "dev"

func main() {
	startTime := time.Now()

	var overrides config.Overrides
	flag.StringVar(&overrides.EnvFile, "env-file", "", "path to .env file")
	flag.StringVar(&overrides.HTTPAddr, "addr", "", "HTTP listen address")
	flag.StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flag.StringVar(&overrides.AudioDir, "audio-dir", "", "audio catalog directory")
	flag.StringVar(&overrides.CacheDir, "cache-dir", "", "result cache directory")
	flag.Parse()

	cfg, err := config.Load(overrides)
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	log.Info().Str("version", version).Msg("stt-bench starting")

	if !media.CheckFFmpeg() || !media.CheckFFprobe() {
		log.Warn().Msg("ffmpeg/ffprobe not found in PATH; duration probing and compression disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := cache.New(cfg.CacheDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize result cache")
	}

	arch, err := archive.New(cfg.S3, cfg.ResultsDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize results archive")
	}
	log.Info().Str("type", arch.Type()).Msg("results archive ready")

	cat, err := catalog.New(cfg.AudioDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize audio catalog")
	}
	watcher, err := catalog.NewWatcher(ctx, cat, log)
	if err != nil {
		log.Warn().Err(err).Msg("audio directory watcher unavailable; listings refresh only on restart")
	} else {
		defer watcher.Close()
	}

	var catalogDB *catalog.DB
	if cfg.CatalogDatabaseURL != "" {
		dbLog := log.With().Str("component", "database").Logger()
		catalogDB, err = catalog.Connect(ctx, cfg.CatalogDatabaseURL, dbLog)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to recordings database")
		}
		defer catalogDB.Close()
	}

	providers := make(map[string]transcribe.Provider)
	if cfg.OpenAIAPIKey != "" {
		providers["openai"] = transcribe.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.ProviderTimeout)
	}
	if cfg.AssemblyAIAPIKey != "" {
		providers["assemblyai"] = transcribe.NewAssemblyAIClient(cfg.AssemblyAIAPIKey)
	}
	if cfg.GeminiAPIKey != "" {
		providers["gemini"] = transcribe.NewGeminiClient(cfg.GeminiAPIKey, cfg.ProviderTimeout)
	}
	if len(providers) == 0 {
		log.Warn().Msg("no provider API keys configured; every transcription will fail")
	} else {
		names := make([]string, 0, len(providers))
		for name := range providers {
			names = append(names, name)
		}
		log.Info().Strs("providers", names).Msg("providers configured")
	}

	dispatcher := transcribe.NewDispatcher(transcribe.DispatcherOptions{
		Cache:           store,
		Providers:       providers,
		Archive:         arch,
		TargetUploadMB:  cfg.TargetUploadMB,
		ProviderTimeout: cfg.ProviderTimeout,
		Log:             log,
	})

	httpLog := log.With().Str("component", "http").Logger()
	srv := api.NewServer(api.Deps{
		Config:     cfg,
		Dispatcher: dispatcher,
		Cache:      store,
		Catalog:    cat,
		CatalogDB:  catalogDB,
		Providers:  providers,
		Version:    version,
		StartTime:  startTime,
	}, httpLog)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	log.Info().Msg("stt-bench stopped")
}
