package service

import (
	"context"
	"io"

	"DriveX/internal/cli/api"
)

// FileAPI — порт файловых операций бэкенда (HTTP или локальный mock).
type FileAPI interface {
	UploadFile(ctx context.Context, token string, f api.UploadFile, description string) (*api.Envelope[api.FileItem], error)
	ListFiles(ctx context.Context, token string, q api.ListQuery) (*api.Envelope[api.FileList], error)
	GetFile(ctx context.Context, token, id string) (*api.Envelope[api.FileItem], error)
	DeleteFile(ctx context.Context, token, id string) (*api.MessageEnvelope, error)
	StorageUsage(ctx context.Context, token string) (*api.Envelope[api.StorageUsage], error)
	Download(ctx context.Context, rawURL, token string, w io.Writer) (int64, error)
}

// AuthAPI — порт операций аутентификации бэкенда.
type AuthAPI interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.Envelope[api.AuthResponse], error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.Envelope[api.AuthResponse], error)
	Me(ctx context.Context, token string) (*api.Envelope[api.User], error)
	GoogleAuth(ctx context.Context, req api.GoogleAuthRequest) (*api.Envelope[api.AuthResponse], error)
	ForgotPassword(ctx context.Context, req api.ForgotPasswordRequest) (*api.MessageEnvelope, error)
	ResetPassword(ctx context.Context, req api.ResetPasswordRequest) (*api.MessageEnvelope, error)
	ChangePassword(ctx context.Context, token string, req api.ChangePasswordRequest) (*api.MessageEnvelope, error)
}

var (
	_ FileAPI = (*api.Client)(nil)
	_ AuthAPI = (*api.Client)(nil)
)

// call выполняет запрос и приводит success:false к ошибке.
func call[T any](env *api.Envelope[T], err error) (*api.Envelope[T], error) {
	if err != nil {
		return nil, err
	}
	if err := env.Err(); err != nil {
		return nil, err
	}
	return env, nil
}
