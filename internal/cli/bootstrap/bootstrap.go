package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"

	"DriveX/internal/cli/api"
	fsrepo "DriveX/internal/cli/repo/fs"
	reposqlite "DriveX/internal/cli/repo/sqlite"
	"DriveX/internal/cli/service"
	"DriveX/internal/cli/session"
	"DriveX/internal/config"

	"go.uber.org/zap"
)

// Env — зависимости одной команды CLI.
type Env struct {
	Cfg     *config.Config
	Logger  *zap.SugaredLogger
	Session *session.Store
	Client  *api.Client
	// Files — HTTP-клиент или локальный mock, в зависимости от MockMode.
	Files   service.ProfileAPI
	Mock    *service.MockFileAPI
	cleanup func() error
}

// NewLogger пишет в stderr только в режиме debug.
func NewLogger(debug bool) *zap.SugaredLogger {
	if !debug {
		return zap.NewNop().Sugar()
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.OutputPaths = []string{"stderr"}
	l, err := zcfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// MockDBPath — путь к локальному набору файлов mock mode.
func MockDBPath(cfg *config.Config) string {
	return filepath.Join(cfg.StateDir, "mock", "files.sqlite")
}

// OpenSession загружает сессию из каталога состояния.
func OpenSession(cfg *config.Config, logger *zap.SugaredLogger) (*session.Store, error) {
	s := session.New(fsrepo.NewKVFSStore(cfg.StateDir), logger)
	if err := s.Load(); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return s, nil
}

func NewAPIClient(cfg *config.Config, logger *zap.SugaredLogger) *api.Client {
	return api.New(cfg.APIBaseURL, api.WithTimeout(cfg.HTTPTimeout), api.WithLogger(logger))
}

// Open собирает окружение команды. Close нужно вызвать по завершении.
func Open(ctx context.Context, cfg *config.Config) (*Env, error) {
	logger := NewLogger(cfg.Debug)
	sess, err := OpenSession(cfg, logger)
	if err != nil {
		return nil, err
	}
	env := &Env{
		Cfg:     cfg,
		Logger:  logger,
		Session: sess,
		Client:  NewAPIClient(cfg, logger),
		cleanup: func() error { return nil },
	}
	env.Files = env.Client
	if cfg.MockMode {
		r, err := reposqlite.Open(ctx, MockDBPath(cfg))
		if err != nil {
			return nil, fmt.Errorf("open mock db: %w", err)
		}
		env.Mock = service.NewMockFileAPI(r, logger)
		env.Files = env.Mock
		env.cleanup = r.Close
		logger.Debugw("mock mode enabled", "db", MockDBPath(cfg))
	}
	return env, nil
}

// Token возвращает токен сессии; в mock mode без сессии подставляется заглушка.
func (e *Env) Token() (string, error) {
	if t := e.Session.Token(); t != "" {
		return t, nil
	}
	if e.Cfg.MockMode {
		return service.MockToken, nil
	}
	return "", service.ErrNotAuthenticated
}

func (e *Env) Close() error {
	_ = e.Logger.Sync()
	return e.cleanup()
}
