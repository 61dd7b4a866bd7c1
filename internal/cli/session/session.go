// Package session holds the authenticated session of the CLI: the bearer
// token and the cached user profile, persisted through a key-value store.
package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"DriveX/internal/cli/api"
	"DriveX/internal/cli/repo"

	"go.uber.org/zap"
)

const (
	TokenKey = "drivex_token"
	UserKey  = "drivex_user"
)

// User is the cached profile. It is stored as JSON under UserKey.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// FromAPI converts a backend profile.
func FromAPI(u api.User) *User {
	return &User{ID: u.ID.String(), Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

// State is a snapshot of the session.
type State struct {
	Token     string
	User      *User
	IsLoading bool
}

// Authenticated reports whether a token is present.
func (s State) Authenticated() bool { return s.Token != "" }

// Store is safe for concurrent use. Writes go straight to the backing store;
// token and user are independent keys, there is no pairing transaction.
type Store struct {
	kv     repo.KeyValueStore
	logger *zap.SugaredLogger

	mu      sync.RWMutex
	token   string
	user    *User
	loading bool

	once  sync.Once
	ready chan struct{}
}

func New(kv repo.KeyValueStore, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{
		kv:      kv,
		logger:  logger,
		loading: true,
		ready:   make(chan struct{}),
	}
}

// Load reads the persisted token and user exactly once. A corrupt user entry
// is removed and the session continues without a user.
func (s *Store) Load() error {
	var loadErr error
	s.once.Do(func() {
		defer close(s.ready)

		token, _, err := s.kv.Get(TokenKey)
		if err != nil {
			loadErr = fmt.Errorf("read token: %w", err)
		}
		var user *User
		raw, ok, err := s.kv.Get(UserKey)
		switch {
		case err != nil:
			if loadErr == nil {
				loadErr = fmt.Errorf("read user: %w", err)
			}
		case ok:
			var u User
			if err := json.Unmarshal([]byte(raw), &u); err != nil {
				s.logger.Warnw("stored user is corrupt, removing", "error", err)
				_ = s.kv.Delete(UserKey)
			} else {
				user = &u
			}
		}

		s.mu.Lock()
		s.token, s.user, s.loading = token, user, false
		s.mu.Unlock()
		s.logger.Debugw("session loaded", "authenticated", token != "", "hasUser", user != nil)
	})
	return loadErr
}

// Ready is closed once Load has finished.
func (s *Store) Ready() <-chan struct{} { return s.ready }

func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var u *User
	if s.user != nil {
		cp := *s.user
		u = &cp
	}
	return State{Token: s.token, User: u, IsLoading: s.loading}
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken persists the token immediately; an empty token removes the key.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if token == "" {
		err = s.kv.Delete(TokenKey)
	} else {
		err = s.kv.Set(TokenKey, token)
	}
	if err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	s.token = token
	return nil
}

// SetUser persists the user immediately; nil removes the key.
func (s *Store) SetUser(u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		if err := s.kv.Delete(UserKey); err != nil {
			return fmt.Errorf("persist user: %w", err)
		}
		s.user = nil
		return nil
	}
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.kv.Set(UserKey, string(data)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	cp := *u
	s.user = &cp
	return nil
}

// Logout clears both token and user.
func (s *Store) Logout() error {
	if err := s.SetToken(""); err != nil {
		return err
	}
	return s.SetUser(nil)
}
