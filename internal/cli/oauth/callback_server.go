package oauth

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const callbackPage = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>DriveX</title></head>
<body>
<p id="status">Completing Google sign-in...</p>
<script>
fetch("/auth/callback/fragment", {method: "POST", body: window.location.hash.substring(1)})
  .then(function (r) { return r.text(); })
  .then(function (t) { document.getElementById("status").textContent = t; })
  .catch(function () { document.getElementById("status").textContent = "Google sign-in failed."; });
</script>
</body>
</html>
`

// CallbackServer receives the provider redirect on a loopback address. The
// fragment never reaches a server, so the page posts it back.
type CallbackServer struct {
	addr   string
	guard  *Guard
	logger *zap.SugaredLogger

	srv  *http.Server
	ln   net.Listener
	ctx  context.Context
	stop context.CancelFunc

	once   sync.Once
	result chan error
}

func NewCallbackServer(addr string, exchange ExchangeFunc, logger *zap.SugaredLogger) *CallbackServer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	ctx, stop := context.WithCancel(context.Background())
	return &CallbackServer{
		addr:   addr,
		guard:  NewGuard(exchange, DefaultStartDelay),
		logger: logger,
		ctx:    ctx,
		stop:   stop,
		result: make(chan error, 1),
	}
}

// Router returns the callback routes.
func (s *CallbackServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(CallbackPath, s.handlePage)
	r.Post(CallbackPath+"/fragment", s.handleFragment)
	return r
}

func (s *CallbackServer) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = io.WriteString(w, callbackPage)
}

func (s *CallbackServer) handleFragment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 16<<10))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	// обмен привязан к жизни сервера, а не запроса: закрытая вкладка не отменяет вход
	err = s.guard.Run(s.ctx, ParseFragment(string(body)))
	s.once.Do(func() { s.result <- err })

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err != nil {
		s.logger.Warnw("oauth callback failed", "error", err)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "Google sign-in failed. Return to the terminal.")
		return
	}
	s.logger.Infow("oauth callback handled")
	_, _ = io.WriteString(w, "Signed in. You can close this tab.")
}

// Start listens on the configured address and returns the origin to
// register as redirect target.
func (s *CallbackServer) Start() (string, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", err
	}
	s.ln = ln
	s.srv = &http.Server{Handler: s.Router(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorw("callback server stopped", "error", err)
		}
	}()
	return s.Origin(), nil
}

// Origin is http://<listen address>; empty before Start.
func (s *CallbackServer) Origin() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Wait blocks until the first callback has been handled or ctx is done.
func (s *CallbackServer) Wait(ctx context.Context) error {
	select {
	case err := <-s.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *CallbackServer) Shutdown(ctx context.Context) error {
	s.stop()
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
