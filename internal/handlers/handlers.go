package handlers

import (
	"DriveX/internal/config"
	"DriveX/internal/middleware"
	"DriveX/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	fileService *service.FileService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(userService, logger, config)
	fileHandler := NewFileHandler(fileService, logger, config)

	r.Route("/api", func(r chi.Router) {
		// Auth routes
		r.Post("/auth/register", userHandler.Register)
		r.Post("/auth/login", userHandler.Login)
		r.Post("/auth/google", userHandler.Google)
		r.Post("/auth/forgot-password", userHandler.ForgotPassword)
		r.Post("/auth/reset-password", userHandler.ResetPassword)

		// публичная ссылка на содержимое
		r.Get("/files/{id}/content", fileHandler.Content)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/auth/me", userHandler.Me)
			r.Post("/auth/change-password", userHandler.ChangePassword)

			// File routes
			r.Post("/files/upload", fileHandler.Upload)
			r.Get("/files", fileHandler.List)
			r.Get("/files/usage", fileHandler.Usage)
			r.Get("/files/{id}", fileHandler.Get)
			r.Delete("/files/{id}", fileHandler.Delete)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	return &Handler{Router: r}
}

// requireUser отклоняет запросы без валидного bearer-токена.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
