package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cleanup := setEnvs(t, map[string]string{
		"OPENAI_API_KEY": "sk-test",
	})
	defer cleanup()

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(Overrides{EnvFile: "nonexistent.env"})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.HTTPAddr != ":8080" {
			t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
		}
		if cfg.AudioDir != "./audio" {
			t.Errorf("AudioDir = %q, want ./audio", cfg.AudioDir)
		}
		if cfg.CacheDir != "./.cache" {
			t.Errorf("CacheDir = %q, want ./.cache", cfg.CacheDir)
		}
		if cfg.TargetUploadMB != 24 {
			t.Errorf("TargetUploadMB = %v, want 24", cfg.TargetUploadMB)
		}
		if cfg.ProviderTimeout != 10*time.Minute {
			t.Errorf("ProviderTimeout = %v, want 10m", cfg.ProviderTimeout)
		}
		if cfg.S3.Enabled() {
			t.Error("S3.Enabled() = true with no bucket configured")
		}
	})

	t.Run("env_vars_read", func(t *testing.T) {
		cfg, err := Load(Overrides{EnvFile: "nonexistent.env"})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.OpenAIAPIKey != "sk-test" {
			t.Errorf("OpenAIAPIKey = %q, want sk-test", cfg.OpenAIAPIKey)
		}
	})

	t.Run("cli_overrides_take_priority", func(t *testing.T) {
		cfg, err := Load(Overrides{
			EnvFile:  "nonexistent.env",
			HTTPAddr: ":9090",
			LogLevel: "debug",
			AudioDir: "/tmp/audio",
			CacheDir: "/tmp/cache",
		})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.HTTPAddr != ":9090" {
			t.Errorf("HTTPAddr = %q, want :9090", cfg.HTTPAddr)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
		}
		if cfg.AudioDir != "/tmp/audio" {
			t.Errorf("AudioDir = %q, want /tmp/audio", cfg.AudioDir)
		}
		if cfg.CacheDir != "/tmp/cache" {
			t.Errorf("CacheDir = %q, want /tmp/cache", cfg.CacheDir)
		}
	})
}

func TestS3ConfigEnabled(t *testing.T) {
	cleanup := setEnvs(t, map[string]string{
		"RESULTS_S3_BUCKET": "bench-results",
	})
	defer cleanup()

	cfg, err := Load(Overrides{EnvFile: "nonexistent.env"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.S3.Enabled() {
		t.Error("S3.Enabled() = false with bucket configured")
	}
	if cfg.S3.Prefix != "results" {
		t.Errorf("S3.Prefix = %q, want results", cfg.S3.Prefix)
	}
}

// setEnvs sets environment variables and returns a cleanup function.
func setEnvs(t *testing.T, envs map[string]string) func() {
	t.Helper()
	originals := make(map[string]string)
	unset := make([]string, 0)

	for k, v := range envs {
		if orig, ok := os.LookupEnv(k); ok {
			originals[k] = orig
		} else {
			unset = append(unset, k)
		}
		os.Setenv(k, v)
	}

	return func() {
		for k, v := range originals {
			os.Setenv(k, v)
		}
		for _, k := range unset {
			os.Unsetenv(k)
		}
	}
}
