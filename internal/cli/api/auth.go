package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// MessageEnvelope is the response of endpoints that only report a message.
type MessageEnvelope = Envelope[json.RawMessage]

func (c *Client) Login(ctx context.Context, req LoginRequest) (*Envelope[AuthResponse], error) {
	return Request[AuthResponse](ctx, c, http.MethodPost, "/auth/login", req, "")
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Envelope[AuthResponse], error) {
	return Request[AuthResponse](ctx, c, http.MethodPost, "/auth/register", req, "")
}

func (c *Client) Me(ctx context.Context, token string) (*Envelope[User], error) {
	return Request[User](ctx, c, http.MethodGet, "/auth/me", nil, token)
}

// GoogleAuth exchanges identity-provider tokens for a backend session.
func (c *Client) GoogleAuth(ctx context.Context, req GoogleAuthRequest) (*Envelope[AuthResponse], error) {
	return Request[AuthResponse](ctx, c, http.MethodPost, "/auth/google", req, "")
}

func (c *Client) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*MessageEnvelope, error) {
	return Request[json.RawMessage](ctx, c, http.MethodPost, "/auth/forgot-password", req, "")
}

func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageEnvelope, error) {
	return Request[json.RawMessage](ctx, c, http.MethodPost, "/auth/reset-password", req, "")
}

func (c *Client) ChangePassword(ctx context.Context, token string, req ChangePasswordRequest) (*MessageEnvelope, error) {
	return Request[json.RawMessage](ctx, c, http.MethodPost, "/auth/change-password", req, token)
}
