package service

import "errors"

var (
	// ErrNotAuthenticated — операция требует входа.
	ErrNotAuthenticated = errors.New("not authenticated: run login first")
	// ErrStale — результат устарел: после него был запрошен другой ключ.
	ErrStale = errors.New("stale result")
)
