package handlers

import (
	"DriveX/internal/config"
	"DriveX/internal/middleware"
	"DriveX/internal/model"
	"DriveX/internal/service"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// TokenTTL — срок жизни access-токена.
const TokenTTL = 24 * time.Hour

// UserHandler обрабатывает /api/auth/*.
type UserHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{UserService: userService, Logger: logger, Config: cfg}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

type googleAuthRequest struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=100"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=100"`
}

type authResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
	Name        string `json:"name"`
	Email       string `json:"email"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

// signIn выпускает токен и пишет ответ входа.
func (h *UserHandler) signIn(w http.ResponseWriter, u *model.User, message string) {
	token, err := middleware.IssueToken(u.ID, u.Name, h.Config.AuthSecret, TokenTTL)
	if err != nil {
		writeServiceError(w, h.Logger, "issue token", err)
		return
	}
	writeOK(w, message, authResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(TokenTTL / time.Second),
		Name:        u.Name,
		Email:       u.Email,
	})
}

// Register регистрация пользователя
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.UserService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.Logger, "Register", err)
		return
	}
	h.signIn(w, u, "User registered successfully")
}

// Login вход по email и паролю
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.Logger, "Login", err)
		return
	}
	h.signIn(w, u, "User logged in successfully")
}

// Google обмен токена провайдера на токен DriveX
func (h *UserHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req googleAuthRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.UserService.GoogleLogin(r.Context(), req.AccessToken)
	if err != nil {
		writeServiceError(w, h.Logger, "Google", err)
		return
	}
	h.signIn(w, u, "Google authentication successful")
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	u, err := h.UserService.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.Logger, "Me", err)
		return
	}
	writeOK(w, "", userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// ForgotPassword отвечает одинаково для известных и неизвестных адресов.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := h.UserService.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, h.Logger, "ForgotPassword", err)
		return
	}
	writeOK(w, "Password reset email sent successfully", nil)
}

func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.UserService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeServiceError(w, h.Logger, "ResetPassword", err)
		return
	}
	writeOK(w, "Password reset successfully", nil)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	if err := h.UserService.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		writeServiceError(w, h.Logger, "ChangePassword", err)
		return
	}
	writeOK(w, "Password changed successfully", nil)
}
