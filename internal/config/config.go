package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	AssemblyAIAPIKey string `env:"ASSEMBLYAI_API_KEY"`
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`

	AudioDir   string `env:"AUDIO_DIR" envDefault:"./audio"`
	CacheDir   string `env:"CACHE_DIR" envDefault:"./.cache"`
	ResultsDir string `env:"RESULTS_DIR" envDefault:"./results"`

	// Optional read-only recordings catalog maintained by the recorder app.
	CatalogDatabaseURL string `env:"CATALOG_DATABASE_URL"`

	// Provider call budget. Gemini needs headroom for long recordings.
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10m"`

	// Upload target when compressing for providers with a size ceiling,
	// kept just under OpenAI's 25MB limit.
	TargetUploadMB float64 `env:"TARGET_UPLOAD_MB" envDefault:"24"`

	DefaultLanguage string `env:"DEFAULT_LANGUAGE"`

	HTTPAddr     string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15m"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`

	AuthToken string `env:"AUTH_TOKEN"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	S3 S3Config
}

// S3Config mirrors fresh results to an S3-compatible object store when set.
type S3Config struct {
	Bucket    string `env:"RESULTS_S3_BUCKET"`
	Region    string `env:"RESULTS_S3_REGION" envDefault:"us-east-1"`
	Endpoint  string `env:"RESULTS_S3_ENDPOINT"`
	AccessKey string `env:"RESULTS_S3_ACCESS_KEY"`
	SecretKey string `env:"RESULTS_S3_SECRET_KEY"`
	Prefix    string `env:"RESULTS_S3_PREFIX" envDefault:"results"`
}

// Enabled reports whether the S3 mirror is configured.
func (c S3Config) Enabled() bool { return c.Bucket != "" }

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile  string
	HTTPAddr string
	LogLevel string
	AudioDir string
	CacheDir string
}

// Load reads configuration from .env file, environment variables, and CLI
// overrides. Priority: CLI flags > environment variables > .env file >
// struct defaults.
func Load(overrides Overrides) (*Config, error) {
	// Load .env file (silent if missing)
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if overrides.HTTPAddr != "" {
		cfg.HTTPAddr = overrides.HTTPAddr
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	if overrides.AudioDir != "" {
		cfg.AudioDir = overrides.AudioDir
	}
	if overrides.CacheDir != "" {
		cfg.CacheDir = overrides.CacheDir
	}

	return cfg, nil
}
