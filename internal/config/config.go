package config

import (
	"flag"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	DefaultAPIBaseURL   = "http://localhost:8080/api"
	DefaultCallbackAddr = "127.0.0.1:8976"
	DefaultServerAddr   = "localhost:8080"
)

type Config struct {
	// Server-side settings (dxserver)
	ServerAddr    string `env:"SERVER_ADDR"`
	DatabaseDSN   string `env:"DATABASE_URI"`
	AuthSecret    string `env:"AUTH_SECRET"`
	BlobMaxSizeMB int    `env:"BLOB_MAX_MB"`

	// Client-side settings (dxcli)
	APIBaseURL     string        `env:"API_BASE_URL"`
	IdentityURL    string        `env:"IDENTITY_URL"`
	CallbackAddr   string        `env:"OAUTH_CALLBACK_ADDR"`
	StateDir       string        `env:"DRIVEX_STATE_DIR"`
	MockMode       bool          `env:"DRIVEX_MOCK"`
	PageSize       int           `env:"PAGE_SIZE"`
	StorageLimitGB int           `env:"STORAGE_LIMIT_GB"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT"`
	Debug          bool          `env:"DRIVEX_DEBUG"`
	Version        bool          `env:"-"` // show version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// флаги перекрывают значения из env (значение env используется как default флага)
	// Server flags
	flag.StringVar(&cfg.ServerAddr, "addr", cfg.ServerAddr, "address of the fixture server (host:port)")
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (путь SQLite или postgres://...)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.IntVar(&cfg.BlobMaxSizeMB, "blob-max-mb", cfg.BlobMaxSizeMB, "максимальный размер загружаемого файла, МБ")
	// Client flags
	flag.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "base URL of the DriveX API, e.g. http://localhost:8080/api")
	flag.StringVar(&cfg.IdentityURL, "identity-url", cfg.IdentityURL, "base URL of the identity provider used for Google sign-in")
	flag.StringVar(&cfg.CallbackAddr, "callback-addr", cfg.CallbackAddr, "loopback host:port receiving the OAuth callback")
	flag.StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory for the session and mock data")
	flag.BoolVar(&cfg.MockMode, "mock", cfg.MockMode, "use the local mock dataset instead of the backend")
	flag.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "files per page")
	flag.IntVar(&cfg.StorageLimitGB, "storage-limit", cfg.StorageLimitGB, "storage quota shown in the profile, GB")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "write debug logs to stderr")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)

// applyDefaults заполняет пустые и невалидные значения.
func (cfg *Config) applyDefaults() {
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "dxserver.db"
	}
	if cfg.BlobMaxSizeMB <= 0 {
		cfg.BlobMaxSizeMB = 50
	}
	if !hostPortRe.MatchString(cfg.ServerAddr) {
		cfg.ServerAddr = DefaultServerAddr
	}
	if !hostPortRe.MatchString(cfg.CallbackAddr) {
		cfg.CallbackAddr = DefaultCallbackAddr
	}
	// API base URL must be an absolute http(s) URL, otherwise use default.
	if u, err := url.Parse(cfg.APIBaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.StorageLimitGB <= 0 {
		cfg.StorageLimitGB = 10
	}
	if cfg.HTTPTimeout < 0 {
		cfg.HTTPTimeout = 0
	}
	if cfg.StateDir == "" {
		home, err := os.UserConfigDir()
		if err != nil {
			home, _ = os.UserHomeDir()
		}
		cfg.StateDir = filepath.Join(home, "DriveX")
	}
}

// StorageLimitBytes возвращает квоту хранилища в байтах.
func (cfg *Config) StorageLimitBytes() int64 {
	return int64(cfg.StorageLimitGB) * 1024 * 1024 * 1024
}
