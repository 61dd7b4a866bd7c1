package service

import (
	"DriveX/internal/model"
	"DriveX/internal/repo"
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// мок для repo.UserRepository
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) UpdateUser(ctx context.Context, id int64, updates map[string]any) error {
	return m.Called(ctx, id, updates).Error(0)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

// мок для repo.ResetTokenRepository
type mockResetRepo struct{ mock.Mock }

func (m *mockResetRepo) Create(ctx context.Context, t *model.ResetToken) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockResetRepo) Consume(ctx context.Context, token string, now time.Time) (string, error) {
	args := m.Called(ctx, token, now)
	return args.String(0), args.Error(1)
}

var _ repo.ResetTokenRepository = (*mockResetRepo)(nil)

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	m := new(mockUserRepo)
	svc := NewUserService(m, new(mockResetRepo), nil)

	t.Run("ok when email free", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByEmail", mock.Anything, "john@example.com").Return((*model.User)(nil), gorm.ErrRecordNotFound).Once()
		created := &model.User{ID: 10, Name: "john", Email: "john@example.com"}
		m.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "john@example.com" && u.Password != "" && u.Password != "p@ssword" && u.Provider == model.ProviderLocal
		})).Return(created, nil).Once()

		user, err := svc.Register(ctx, "john", " John@Example.com ", "p@ssword")
		assert.NoError(t, err)
		assert.Equal(t, int64(10), user.ID)
		m.AssertExpectations(t)
	})

	t.Run("conflict when email taken", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByEmail", mock.Anything, "john@example.com").Return(&model.User{ID: 1, Email: "john@example.com"}, nil).Once()

		user, err := svc.Register(ctx, "john", "john@example.com", "p@ssword")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrEmailTaken)
		m.AssertExpectations(t)
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	m := new(mockUserRepo)
	svc := NewUserService(m, new(mockResetRepo), nil)

	// готовим хеш для пароля "secret"
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)

	t.Run("ok with valid credentials", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(&model.User{ID: 2, Email: "alice@example.com", Password: string(hash)}, nil).Once()

		user, err := svc.Login(ctx, "alice@example.com", "secret")
		assert.NoError(t, err)
		assert.Equal(t, int64(2), user.ID)
		m.AssertExpectations(t)
	})

	t.Run("invalid password", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(&model.User{ID: 2, Email: "alice@example.com", Password: string(hash)}, nil).Once()

		user, err := svc.Login(ctx, "alice@example.com", "wrong")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		m.AssertExpectations(t)
	})

	t.Run("unknown email and google account", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return((*model.User)(nil), gorm.ErrRecordNotFound).Once()
		m.On("GetUserByEmail", mock.Anything, "g@example.com").Return(&model.User{ID: 3, Provider: model.ProviderGoogle}, nil).Once()

		_, err := svc.Login(ctx, "nobody@example.com", "x")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = svc.Login(ctx, "g@example.com", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		m.AssertExpectations(t)
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	m := new(mockUserRepo)
	svc := NewUserService(m, new(mockResetRepo), nil)
	hash, _ := bcrypt.GenerateFromPassword([]byte("old-pass"), bcrypt.MinCost)

	m.On("GetUserByID", mock.Anything, int64(4)).Return(&model.User{ID: 4, Password: string(hash)}, nil)
	m.On("UpdateUser", mock.Anything, int64(4), mock.MatchedBy(func(u map[string]any) bool {
		p, _ := u["password"].(string)
		return bcrypt.CompareHashAndPassword([]byte(p), []byte("new-pass")) == nil
	})).Return(nil).Once()

	assert.ErrorIs(t, svc.ChangePassword(ctx, 4, "bad", "new-pass"), ErrWrongPassword)
	assert.NoError(t, svc.ChangePassword(ctx, 4, "old-pass", "new-pass"))
	m.AssertExpectations(t)
}

func fakeIdentityToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	enc := func(v any) string {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(b)
	}
	return enc(map[string]string{"alg": "HS256", "typ": "JWT"}) + "." + enc(claims) + ".sig"
}

func TestUserService_GoogleLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with metadata name", func(t *testing.T) {
		m := new(mockUserRepo)
		svc := NewUserService(m, new(mockResetRepo), nil)
		m.On("GetUserByEmail", mock.Anything, "ann@example.com").Return((*model.User)(nil), gorm.ErrRecordNotFound).Once()
		m.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Name == "Ann Lee" && u.Provider == model.ProviderGoogle && u.Password == ""
		})).Return(&model.User{ID: 8, Name: "Ann Lee", Email: "ann@example.com"}, nil).Once()

		token := fakeIdentityToken(t, map[string]any{
			"email":         "Ann@example.com",
			"user_metadata": map[string]any{"full_name": "Ann Lee"},
		})
		u, err := svc.GoogleLogin(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, int64(8), u.ID)
		m.AssertExpectations(t)
	})

	t.Run("updates name of existing user", func(t *testing.T) {
		m := new(mockUserRepo)
		svc := NewUserService(m, new(mockResetRepo), nil)
		m.On("GetUserByEmail", mock.Anything, "bob@example.com").Return(&model.User{ID: 9, Name: "old", Email: "bob@example.com"}, nil).Once()
		m.On("UpdateUser", mock.Anything, int64(9), map[string]any{"name": "bob"}).Return(nil).Once()

		u, err := svc.GoogleLogin(ctx, fakeIdentityToken(t, map[string]any{"email": "bob@example.com"}))
		require.NoError(t, err)
		assert.Equal(t, "bob", u.Name)
		m.AssertExpectations(t)
	})

	t.Run("rejects garbage and tokens without email", func(t *testing.T) {
		svc := NewUserService(new(mockUserRepo), new(mockResetRepo), nil)
		_, err := svc.GoogleLogin(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidGoogleToken)
		_, err = svc.GoogleLogin(ctx, fakeIdentityToken(t, map[string]any{"sub": "x"}))
		assert.ErrorIs(t, err, ErrInvalidGoogleToken)
	})
}

func TestUserService_ForgotAndResetPassword(t *testing.T) {
	ctx := context.Background()
	m := new(mockUserRepo)
	resets := new(mockResetRepo)
	svc := NewUserService(m, resets, nil)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	m.On("GetUserByEmail", mock.Anything, "ann@example.com").Return(&model.User{ID: 5, Email: "ann@example.com"}, nil)
	m.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return((*model.User)(nil), gorm.ErrRecordNotFound)

	var issued string
	resets.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.ResetToken) bool {
		issued = rt.Token
		return rt.Email == "ann@example.com" && rt.ExpiresAt.Equal(fixed.Add(ResetTokenTTL))
	})).Return(nil).Once()

	token, err := svc.ForgotPassword(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, issued, token)

	token, err = svc.ForgotPassword(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)

	resets.On("Consume", mock.Anything, issued, fixed).Return("ann@example.com", nil).Once()
	resets.On("Consume", mock.Anything, "bad", fixed).Return("", repo.ErrNotFound).Once()
	m.On("UpdateUser", mock.Anything, int64(5), mock.Anything).Return(nil).Once()

	assert.NoError(t, svc.ResetPassword(ctx, issued, "brand-new-pass"))
	assert.ErrorIs(t, svc.ResetPassword(ctx, "bad", "brand-new-pass"), ErrInvalidResetToken)
	m.AssertExpectations(t)
	resets.AssertExpectations(t)
}
