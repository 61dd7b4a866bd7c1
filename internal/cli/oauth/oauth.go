// Package oauth implements the Google sign-in redirect through the identity
// provider: building the authorize URL, reading tokens from the callback
// fragment and exchanging them exactly once.
package oauth

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/browser"
)

// ErrOAuthFailed is returned when the callback carries no tokens or the
// backend exchange fails.
var ErrOAuthFailed = errors.New("oauth_failed")

const CallbackPath = "/auth/callback"

// Tokens are read from the callback fragment.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	// ExpiresIn is nil when the parameter is absent or not a number.
	ExpiresIn *int
}

// AuthorizeURL builds <identity>/auth/v1/authorize?provider=google&redirect_to=<origin>/auth/callback.
func AuthorizeURL(identityURL, origin string) string {
	redirect := strings.TrimRight(origin, "/") + CallbackPath
	return strings.TrimRight(identityURL, "/") + "/auth/v1/authorize?provider=google&redirect_to=" +
		url.QueryEscape(redirect)
}

// Navigator opens a URL for the user.
type Navigator interface {
	Open(url string) error
}

// BrowserNavigator opens URLs in the system browser.
type BrowserNavigator struct{}

func (BrowserNavigator) Open(u string) error { return browser.OpenURL(u) }

// Initiate navigates to the provider. Nothing is stored locally beforehand.
func Initiate(nav Navigator, identityURL, origin string) (string, error) {
	if identityURL == "" {
		return "", errors.New("identity provider URL is not configured")
	}
	u := AuthorizeURL(identityURL, origin)
	if err := nav.Open(u); err != nil {
		return u, fmt.Errorf("open browser: %w", err)
	}
	return u, nil
}

// ParseFragment reads tokens from a URL fragment (with or without leading '#').
// It returns nil when access_token is absent.
func ParseFragment(fragment string) *Tokens {
	q, err := url.ParseQuery(strings.TrimPrefix(fragment, "#"))
	if err != nil && len(q) == 0 {
		return nil
	}
	access := q.Get("access_token")
	if access == "" {
		return nil
	}
	t := &Tokens{
		AccessToken:  access,
		RefreshToken: q.Get("refresh_token"),
		TokenType:    q.Get("token_type"),
	}
	if v := q.Get("expires_in"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			t.ExpiresIn = &n
		}
	}
	return t
}

// ParseCallbackURL reads tokens from a pasted redirect URL.
func ParseCallbackURL(raw string) (*Tokens, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse callback url: %w", err)
	}
	t := ParseFragment(u.Fragment)
	if t == nil {
		return nil, fmt.Errorf("%w: no tokens found in callback", ErrOAuthFailed)
	}
	return t, nil
}
