package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// resetFlagSet создаёт новый FlagSet перед каждым вызовом NewConfig,
// чтобы избежать повторной регистрации одних и тех же флагов между тестами.
func resetFlagSet(t *testing.T) {
	t.Helper()
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flag.CommandLine.SetOutput(os.Stderr)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SERVER_ADDR", "DATABASE_URI", "AUTH_SECRET", "BLOB_MAX_MB",
		"API_BASE_URL", "IDENTITY_URL", "OAUTH_CALLBACK_ADDR", "DRIVEX_STATE_DIR",
		"DRIVEX_MOCK", "PAGE_SIZE", "STORAGE_LIMIT_GB", "HTTP_TIMEOUT", "DRIVEX_DEBUG",
	} {
		// t.Setenv запоминает исходное значение, затем удаляем переменную целиком
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestNewConfig_DefaultsWhenEnvEmpty(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.AuthSecret != "dev-secret-key" {
		t.Fatalf("AuthSecret default expected 'dev-secret-key', got %q", cfg.AuthSecret)
	}
	if cfg.BlobMaxSizeMB != 50 {
		t.Fatalf("BlobMaxSizeMB default expected 50, got %d", cfg.BlobMaxSizeMB)
	}
	if cfg.APIBaseURL != DefaultAPIBaseURL {
		t.Fatalf("APIBaseURL default expected %q, got %q", DefaultAPIBaseURL, cfg.APIBaseURL)
	}
	if cfg.ServerAddr != DefaultServerAddr || cfg.CallbackAddr != DefaultCallbackAddr {
		t.Fatalf("unexpected addr defaults: server=%q callback=%q", cfg.ServerAddr, cfg.CallbackAddr)
	}
	if cfg.PageSize != 20 || cfg.StorageLimitGB != 10 {
		t.Fatalf("unexpected paging/quota defaults: %d %d", cfg.PageSize, cfg.StorageLimitGB)
	}
	if filepath.Base(cfg.StateDir) != "DriveX" {
		t.Fatalf("StateDir default must end with DriveX, got %q", cfg.StateDir)
	}
	if cfg.MockMode || cfg.Debug {
		t.Fatalf("mock/debug must be off by default")
	}
}

func TestNewConfig_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BASE_URL", "https://drive.example.com/api")
	t.Setenv("IDENTITY_URL", "https://id.example.com")
	t.Setenv("DRIVEX_MOCK", "true")
	t.Setenv("PAGE_SIZE", "50")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("DRIVEX_STATE_DIR", "/tmp/dx-state")
	t.Setenv("BLOB_MAX_MB", "10")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.APIBaseURL != "https://drive.example.com/api" {
		t.Fatalf("APIBaseURL from env expected, got %q", cfg.APIBaseURL)
	}
	if cfg.IdentityURL != "https://id.example.com" {
		t.Fatalf("IdentityURL from env expected, got %q", cfg.IdentityURL)
	}
	if !cfg.MockMode || cfg.PageSize != 50 || cfg.BlobMaxSizeMB != 10 {
		t.Fatalf("env values not applied: %+v", cfg)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Fatalf("HTTPTimeout expected 3s, got %v", cfg.HTTPTimeout)
	}
	if cfg.StateDir != "/tmp/dx-state" {
		t.Fatalf("StateDir expected from env, got %q", cfg.StateDir)
	}
}

func TestNewConfig_InvalidAPIBaseURLFallback(t *testing.T) {
	clearEnv(t)
	// без схемы — невалидно, откат на значение по умолчанию
	t.Setenv("API_BASE_URL", "localhost:8080/api")
	t.Setenv("SERVER_ADDR", "http://bad:8080")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.APIBaseURL != DefaultAPIBaseURL {
		t.Fatalf("invalid API_BASE_URL must fallback, got %q", cfg.APIBaseURL)
	}
	if cfg.ServerAddr != DefaultServerAddr {
		t.Fatalf("invalid SERVER_ADDR must fallback, got %q", cfg.ServerAddr)
	}
}

func TestStorageLimitBytes(t *testing.T) {
	cfg := &Config{StorageLimitGB: 2}
	if got := cfg.StorageLimitBytes(); got != 2*1024*1024*1024 {
		t.Fatalf("unexpected limit: %d", got)
	}
}
