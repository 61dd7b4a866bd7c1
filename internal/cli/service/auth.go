package service

import (
	"context"
	"fmt"
	"strings"

	"DriveX/internal/cli/api"
	"DriveX/internal/cli/oauth"
	"DriveX/internal/cli/session"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type LoginForm struct {
	Email    string `label:"Email" validate:"required,email"`
	Password string `label:"Password" validate:"required"`
}

type RegisterForm struct {
	Name     string `label:"Username" validate:"required,min=3,max=50"`
	Email    string `label:"Email" validate:"required,email"`
	Password string `label:"Password" validate:"required,min=8,max=100"`
}

type ForgotPasswordForm struct {
	Email string `label:"Email" validate:"required,email"`
}

type ResetPasswordForm struct {
	Token           string `label:"Reset token" validate:"required"`
	Password        string `label:"Password" validate:"required,min=8,max=100"`
	ConfirmPassword string `label:"Confirm password" validate:"required,eqfield=Password"`
}

type ChangePasswordForm struct {
	OldPassword     string `label:"Current password" validate:"required"`
	NewPassword     string `label:"Password" validate:"required,min=8,max=100"`
	ConfirmPassword string `label:"Confirm password" validate:"required,eqfield=NewPassword"`
}

// AuthService — юзкейсы входа, регистрации и восстановления пароля.
type AuthService struct {
	api      AuthAPI
	session  *session.Store
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

func NewAuthService(a AuthAPI, s *session.Store, logger *zap.SugaredLogger) *AuthService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &AuthService{api: a, session: s, validate: newValidator(), logger: logger}
}

// Login проверяет форму, получает токен и сохраняет сессию.
func (s *AuthService) Login(ctx context.Context, f LoginForm) (*session.User, error) {
	f.Email = strings.TrimSpace(f.Email)
	if err := validateForm(s.validate, f); err != nil {
		return nil, err
	}
	env, err := call(s.api.Login(ctx, api.LoginRequest{Email: f.Email, Password: f.Password}))
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, env.Data)
}

// Register создаёт аккаунт и сразу входит в него.
func (s *AuthService) Register(ctx context.Context, f RegisterForm) (*session.User, error) {
	f.Email = strings.TrimSpace(f.Email)
	f.Name = strings.TrimSpace(f.Name)
	if err := validateForm(s.validate, f); err != nil {
		return nil, err
	}
	env, err := call(s.api.Register(ctx, api.RegisterRequest{Name: f.Name, Email: f.Email, Password: f.Password}))
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, env.Data)
}

// establish сохраняет токен, затем профиль из /auth/me. Если /auth/me
// недоступен, используются имя и email из ответа входа.
func (s *AuthService) establish(ctx context.Context, auth api.AuthResponse) (*session.User, error) {
	if auth.AccessToken == "" {
		return nil, &api.Error{Message: "empty access token in response"}
	}
	if err := s.session.SetToken(auth.AccessToken); err != nil {
		return nil, err
	}
	u := &session.User{Name: auth.Name, Email: auth.Email}
	if me, err := call(s.api.Me(ctx, auth.AccessToken)); err != nil {
		s.logger.Warnw("fetch profile failed, using auth response", "error", err)
	} else {
		u = session.FromAPI(me.Data)
	}
	if err := s.session.SetUser(u); err != nil {
		return nil, err
	}
	s.logger.Infow("signed in", "email", u.Email)
	return u, nil
}

// GoogleExchange обменивает токены провайдера на сессию бэкенда.
// Подходит как oauth.ExchangeFunc.
func (s *AuthService) GoogleExchange(ctx context.Context, t *oauth.Tokens) error {
	if t == nil || t.AccessToken == "" {
		return fmt.Errorf("%w: no tokens found in callback", oauth.ErrOAuthFailed)
	}
	env, err := call(s.api.GoogleAuth(ctx, api.GoogleAuthRequest{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
	}))
	if err != nil {
		return err
	}
	if err := s.session.SetToken(env.Data.AccessToken); err != nil {
		return err
	}
	// id неизвестен до /auth/me, временно используем имя
	if err := s.session.SetUser(&session.User{ID: env.Data.Name, Name: env.Data.Name, Email: env.Data.Email}); err != nil {
		return err
	}
	me, err := call(s.api.Me(ctx, env.Data.AccessToken))
	if err != nil {
		s.logger.Warnw("fetch profile after google sign-in failed", "error", err)
		return nil
	}
	return s.session.SetUser(session.FromAPI(me.Data))
}

// ForgotPassword запрашивает письмо со ссылкой сброса.
func (s *AuthService) ForgotPassword(ctx context.Context, f ForgotPasswordForm) (string, error) {
	f.Email = strings.TrimSpace(f.Email)
	if err := validateForm(s.validate, f); err != nil {
		return "", err
	}
	env, err := call(s.api.ForgotPassword(ctx, api.ForgotPasswordRequest{Email: f.Email}))
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, f ResetPasswordForm) (string, error) {
	f.Token = strings.TrimSpace(f.Token)
	if err := validateForm(s.validate, f); err != nil {
		return "", err
	}
	env, err := call(s.api.ResetPassword(ctx, api.ResetPasswordRequest{Token: f.Token, NewPassword: f.Password}))
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, f ChangePasswordForm) (string, error) {
	token := s.session.Token()
	if token == "" {
		return "", ErrNotAuthenticated
	}
	if err := validateForm(s.validate, f); err != nil {
		return "", err
	}
	env, err := call(s.api.ChangePassword(ctx, token, api.ChangePasswordRequest{
		OldPassword: f.OldPassword,
		NewPassword: f.NewPassword,
	}))
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// Logout очищает сессию.
func (s *AuthService) Logout() error {
	return s.session.Logout()
}
