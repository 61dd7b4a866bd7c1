package oauth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultStartDelay collapses near-simultaneous callback deliveries.
const DefaultStartDelay = 100 * time.Millisecond

// ExchangeFunc trades provider tokens for a backend session.
type ExchangeFunc func(ctx context.Context, t *Tokens) error

// Guard runs the exchange at most once per lifetime. Concurrent callers share
// the in-flight run; later callers get the recorded result.
type Guard struct {
	exchange ExchangeFunc
	delay    time.Duration

	sf   singleflight.Group
	mu   sync.Mutex
	done bool
	err  error
}

func NewGuard(exchange ExchangeFunc, delay time.Duration) *Guard {
	return &Guard{exchange: exchange, delay: delay}
}

func (g *Guard) Run(ctx context.Context, t *Tokens) error {
	_, err, _ := g.sf.Do("exchange", func() (any, error) {
		g.mu.Lock()
		if g.done {
			err := g.err
			g.mu.Unlock()
			return nil, err
		}
		g.mu.Unlock()

		if g.delay > 0 {
			timer := time.NewTimer(g.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		var err error
		if t == nil {
			err = fmt.Errorf("%w: no tokens found in callback", ErrOAuthFailed)
		} else if xerr := g.exchange(ctx, t); xerr != nil {
			err = fmt.Errorf("%w: %w", ErrOAuthFailed, xerr)
		}

		g.mu.Lock()
		g.done, g.err = true, err
		g.mu.Unlock()
		return nil, err
	})
	return err
}

// Done reports whether the exchange has completed.
func (g *Guard) Done() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.done
}
