package oauth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackServer_PageServesScript(t *testing.T) {
	s := NewCallbackServer("127.0.0.1:0", func(ctx context.Context, tok *Tokens) error { return nil }, nil)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + CallbackPath)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "location.hash")
}

func TestCallbackServer_FragmentExchangedOnce(t *testing.T) {
	var calls int32
	var got *Tokens
	s := NewCallbackServer("127.0.0.1:0", func(ctx context.Context, tok *Tokens) error {
		atomic.AddInt32(&calls, 1)
		got = tok
		return nil
	}, nil)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Post(ts.URL+CallbackPath+"/fragment", "text/plain",
				strings.NewReader("access_token=abc123&token_type=bearer"))
			if assert.NoError(t, err) {
				_ = resp.Body.Close()
				assert.Equal(t, http.StatusOK, resp.StatusCode)
			}
		}()
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	require.NotNil(t, got)
	assert.Equal(t, "abc123", got.AccessToken)
}

func TestCallbackServer_MissingTokensFails(t *testing.T) {
	s := NewCallbackServer("127.0.0.1:0", func(ctx context.Context, tok *Tokens) error { return nil }, nil)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+CallbackPath+"/fragment", "text/plain", strings.NewReader(""))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.ErrorIs(t, s.Wait(ctx), ErrOAuthFailed)
}

func TestCallbackServer_StartAndShutdown(t *testing.T) {
	s := NewCallbackServer("127.0.0.1:0", func(ctx context.Context, tok *Tokens) error { return nil }, nil)
	assert.Empty(t, s.Origin())
	origin, err := s.Start()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(origin, "http://127.0.0.1:"))

	resp, err := http.Get(origin + CallbackPath)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Shutdown(ctx))

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer waitCancel()
	assert.ErrorIs(t, s.Wait(waitCtx), context.DeadlineExceeded)
}
