package service

import (
	"DriveX/internal/model"
	"DriveX/internal/repo"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ResetTokenTTL — срок жизни токена сброса пароля.
const ResetTokenTTL = time.Hour

// UserService — регистрация, вход и управление паролем.
type UserService struct {
	repo   repo.UserRepository
	resets repo.ResetTokenRepository
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewUserService(r repo.UserRepository, resets repo.ResetTokenRepository, logger *zap.SugaredLogger) *UserService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &UserService{repo: r, resets: resets, logger: logger, now: time.Now}
}

// lookup возвращает (nil, nil), если пользователя нет.
func (s *UserService) lookup(ctx context.Context, email string) (*model.User, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return u, err
}

func hashPassword(p string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Register создаёт локального пользователя.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	existing, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.CreateUser(ctx, &model.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: hash,
		Provider: model.ProviderLocal,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("user registered", "user_id", u.ID)
	return u, nil
}

// Login проверяет email и пароль.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.lookup(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	// у пользователей Google нет пароля
	if u == nil || u.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// ChangePassword меняет пароль после проверки текущего.
func (s *UserService) ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Password == "" || bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPassword)) != nil {
		return ErrWrongPassword
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdateUser(ctx, id, map[string]any{"password": hash})
}

// GoogleLogin читает email и имя из токена провайдера и создаёт
// или обновляет пользователя. Подпись не проверяется: только для разработки.
func (s *UserService) GoogleLogin(ctx context.Context, accessToken string) (*model.User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGoogleToken, err)
	}
	email, _ := claims["email"].(string)
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email not found in token", ErrInvalidGoogleToken)
	}
	name := nameFromClaims(claims, email)

	u, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		u, err = s.repo.CreateUser(ctx, &model.User{Name: name, Email: email, Provider: model.ProviderGoogle})
		if err != nil {
			return nil, err
		}
		s.logger.Infow("google user created", "user_id", u.ID)
		return u, nil
	}
	if u.Name != name {
		if err := s.repo.UpdateUser(ctx, u.ID, map[string]any{"name": name}); err != nil {
			return nil, err
		}
		u.Name = name
	}
	return u, nil
}

// nameFromClaims: user_metadata.full_name, затем user_metadata.name, затем часть email до '@'.
func nameFromClaims(claims jwt.MapClaims, email string) string {
	if md, ok := claims["user_metadata"].(map[string]any); ok {
		for _, k := range []string{"full_name", "name"} {
			if v, ok := md[k].(string); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	return "Unknown User"
}

// ForgotPassword выпускает токен сброса. Письма не отправляются: токен пишется в лог.
// Для неизвестного email возвращает пустой токен без ошибки.
func (s *UserService) ForgotPassword(ctx context.Context, email string) (string, error) {
	u, err := s.lookup(ctx, normalizeEmail(email))
	if err != nil {
		return "", err
	}
	if u == nil {
		s.logger.Infow("password reset requested for unknown email")
		return "", nil
	}
	token := uuid.NewString()
	if err := s.resets.Create(ctx, &model.ResetToken{
		Token:     token,
		Email:     u.Email,
		ExpiresAt: s.now().Add(ResetTokenTTL),
	}); err != nil {
		return "", err
	}
	s.logger.Infow("password reset token issued", "email", u.Email, "token", token, "expires_in", ResetTokenTTL)
	return token, nil
}

// ResetPassword устанавливает новый пароль по одноразовому токену.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, err := s.resets.Consume(ctx, token, s.now())
	if errors.Is(err, repo.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	u, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateUser(ctx, u.ID, map[string]any{"password": hash}); err != nil {
		return err
	}
	s.logger.Infow("password reset", "user_id", u.ID)
	return nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
