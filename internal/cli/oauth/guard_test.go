package oauth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_ConcurrentDeliveriesExchangeOnce(t *testing.T) {
	var calls int32
	g := NewGuard(func(ctx context.Context, tok *Tokens) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, 20*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.Run(context.Background(), &Tokens{AccessToken: "a"}))
		}()
	}
	wg.Wait()

	// повторная доставка после завершения тоже не вызывает обмен
	require.NoError(t, g.Run(context.Background(), &Tokens{AccessToken: "a"}))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.True(t, g.Done())
}

func TestGuard_NoTokens(t *testing.T) {
	called := false
	g := NewGuard(func(ctx context.Context, tok *Tokens) error {
		called = true
		return nil
	}, 0)
	err := g.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrOAuthFailed)
	assert.False(t, called)
}

func TestGuard_ExchangeFailureIsRecorded(t *testing.T) {
	backendErr := errors.New("Invalid Google token")
	g := NewGuard(func(ctx context.Context, tok *Tokens) error { return backendErr }, 0)

	err := g.Run(context.Background(), &Tokens{AccessToken: "a"})
	assert.ErrorIs(t, err, ErrOAuthFailed)
	assert.ErrorIs(t, err, backendErr)

	err = g.Run(context.Background(), &Tokens{AccessToken: "b"})
	assert.ErrorIs(t, err, backendErr)
}

func TestGuard_CanceledDuringDelay(t *testing.T) {
	g := NewGuard(func(ctx context.Context, tok *Tokens) error { return nil }, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, g.Run(ctx, &Tokens{AccessToken: "a"}), context.Canceled)
	assert.False(t, g.Done())
}
