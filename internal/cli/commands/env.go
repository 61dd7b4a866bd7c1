package commands

import (
	"context"
	"errors"
	"fmt"

	"DriveX/internal/cli/api"
	"DriveX/internal/cli/bootstrap"
	"DriveX/internal/cli/oauth"
	"DriveX/internal/cli/service"
	"DriveX/internal/config"
)

// navigator открывает ссылки; в тестах подменяется.
var navigator oauth.Navigator = oauth.BrowserNavigator{}

// withEnv открывает окружение команды и закрывает его после fn.
func withEnv(ctx context.Context, cfg *config.Config, fn func(env *bootstrap.Env) error) error {
	env, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(env)
}

// withToken дополнительно требует токен (в mock mode — заглушку).
func withToken(ctx context.Context, cfg *config.Config, fn func(env *bootstrap.Env, token string) error) error {
	return withEnv(ctx, cfg, func(env *bootstrap.Env) error {
		token, err := env.Token()
		if err != nil {
			return err
		}
		err = fn(env, token)
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == 401 && !cfg.MockMode {
			return fmt.Errorf("%s: %w", apiErr.Message, service.ErrNotAuthenticated)
		}
		return err
	})
}

func authService(env *bootstrap.Env) *service.AuthService {
	return service.NewAuthService(env.Client, env.Session, env.Logger)
}
