package service

import (
	"context"
	"io"
	"sync"

	"DriveX/internal/cli/api"
	"DriveX/internal/cli/session"

	"github.com/stretchr/testify/mock"
)

// fileAPIMock — testify-мок порта FileAPI.
type fileAPIMock struct {
	mock.Mock
}

func (m *fileAPIMock) UploadFile(ctx context.Context, token string, f api.UploadFile, description string) (*api.Envelope[api.FileItem], error) {
	args := m.Called(ctx, token, f.Name, description)
	env, _ := args.Get(0).(*api.Envelope[api.FileItem])
	return env, args.Error(1)
}

func (m *fileAPIMock) ListFiles(ctx context.Context, token string, q api.ListQuery) (*api.Envelope[api.FileList], error) {
	args := m.Called(ctx, token, q)
	env, _ := args.Get(0).(*api.Envelope[api.FileList])
	return env, args.Error(1)
}

func (m *fileAPIMock) GetFile(ctx context.Context, token, id string) (*api.Envelope[api.FileItem], error) {
	args := m.Called(ctx, token, id)
	env, _ := args.Get(0).(*api.Envelope[api.FileItem])
	return env, args.Error(1)
}

func (m *fileAPIMock) DeleteFile(ctx context.Context, token, id string) (*api.MessageEnvelope, error) {
	args := m.Called(ctx, token, id)
	env, _ := args.Get(0).(*api.MessageEnvelope)
	return env, args.Error(1)
}

func (m *fileAPIMock) StorageUsage(ctx context.Context, token string) (*api.Envelope[api.StorageUsage], error) {
	args := m.Called(ctx, token)
	env, _ := args.Get(0).(*api.Envelope[api.StorageUsage])
	return env, args.Error(1)
}

func (m *fileAPIMock) Download(ctx context.Context, rawURL, token string, w io.Writer) (int64, error) {
	args := m.Called(ctx, rawURL, token)
	if s, ok := args.Get(0).(string); ok {
		n, _ := io.WriteString(w, s)
		return int64(n), args.Error(1)
	}
	return 0, args.Error(1)
}

func (m *fileAPIMock) Me(ctx context.Context, token string) (*api.Envelope[api.User], error) {
	args := m.Called(ctx, token)
	env, _ := args.Get(0).(*api.Envelope[api.User])
	return env, args.Error(1)
}

// authAPIMock — testify-мок порта AuthAPI.
type authAPIMock struct {
	mock.Mock
}

func (m *authAPIMock) Login(ctx context.Context, req api.LoginRequest) (*api.Envelope[api.AuthResponse], error) {
	args := m.Called(ctx, req)
	env, _ := args.Get(0).(*api.Envelope[api.AuthResponse])
	return env, args.Error(1)
}

func (m *authAPIMock) Register(ctx context.Context, req api.RegisterRequest) (*api.Envelope[api.AuthResponse], error) {
	args := m.Called(ctx, req)
	env, _ := args.Get(0).(*api.Envelope[api.AuthResponse])
	return env, args.Error(1)
}

func (m *authAPIMock) Me(ctx context.Context, token string) (*api.Envelope[api.User], error) {
	args := m.Called(ctx, token)
	env, _ := args.Get(0).(*api.Envelope[api.User])
	return env, args.Error(1)
}

func (m *authAPIMock) GoogleAuth(ctx context.Context, req api.GoogleAuthRequest) (*api.Envelope[api.AuthResponse], error) {
	args := m.Called(ctx, req)
	env, _ := args.Get(0).(*api.Envelope[api.AuthResponse])
	return env, args.Error(1)
}

func (m *authAPIMock) ForgotPassword(ctx context.Context, req api.ForgotPasswordRequest) (*api.MessageEnvelope, error) {
	args := m.Called(ctx, req)
	env, _ := args.Get(0).(*api.MessageEnvelope)
	return env, args.Error(1)
}

func (m *authAPIMock) ResetPassword(ctx context.Context, req api.ResetPasswordRequest) (*api.MessageEnvelope, error) {
	args := m.Called(ctx, req)
	env, _ := args.Get(0).(*api.MessageEnvelope)
	return env, args.Error(1)
}

func (m *authAPIMock) ChangePassword(ctx context.Context, token string, req api.ChangePasswordRequest) (*api.MessageEnvelope, error) {
	args := m.Called(ctx, token, req)
	env, _ := args.Get(0).(*api.MessageEnvelope)
	return env, args.Error(1)
}

// memKV — in-memory хранилище для сессии.
type memKV struct {
	mu sync.Mutex
	m  map[string]string
}

func (k *memKV) Get(key string) (string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.m[key]
	return v, ok, nil
}

func (k *memKV) Set(key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.m[key] = value
	return nil
}

func (k *memKV) Delete(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.m, key)
	return nil
}

func newSession() *session.Store {
	s := session.New(&memKV{m: map[string]string{}}, nil)
	_ = s.Load()
	return s
}

func okEnv[T any](data T) *api.Envelope[T] {
	return &api.Envelope[T]{Success: true, Data: data}
}
