package handlers_test

import (
	"DriveX/internal/config"
	"DriveX/internal/handlers"
	"DriveX/internal/middleware"
	"DriveX/internal/repo"
	"DriveX/internal/service"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

type testEnv struct {
	router http.Handler
	cfg    *config.Config
	users  *service.UserService
}

// newTestRouter собирает роутер поверх in-memory SQLite.
func newTestRouter(t *testing.T) *testEnv {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &config.Config{AuthSecret: "test-secret", BlobMaxSizeMB: 1}
	logger := zap.NewNop().Sugar()
	userSvc := service.NewUserService(repo.NewUserRepository(db), repo.NewResetTokenRepository(db), logger)
	fileSvc := service.NewFileService(repo.NewFileRepository(db), repo.NewBlobRepository(db), int64(cfg.BlobMaxSizeMB)<<20, logger)
	h := handlers.NewHandler(userSvc, fileSvc, logger, cfg)
	return &testEnv{router: h.Router, cfg: cfg, users: userSvc}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return e.serve(t, req, token)
}

func (e *testEnv) serve(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	var env envelope
	_ = json.Unmarshal(rr.Body.Bytes(), &env)
	return rr, env
}

// register создаёт пользователя и возвращает токен.
func (e *testEnv) register(t *testing.T, name, email, password string) string {
	t.Helper()
	rr, env := e.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var auth struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	return auth.AccessToken
}

func tokenFor(t *testing.T, userID int64, secret string) string {
	t.Helper()
	tok, err := middleware.IssueToken(userID, "", secret, time.Hour)
	require.NoError(t, err)
	return tok
}

func makeMultipart(t *testing.T, fields map[string]string, fileName, contentType string, content []byte) (string, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return mw.FormDataContentType(), &buf
}

func (e *testEnv) upload(t *testing.T, token, name, ct string, content []byte, desc string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	fields := map[string]string{}
	if desc != "" {
		fields["description"] = desc
	}
	mct, body := makeMultipart(t, fields, name, ct, content)
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", mct)
	return e.serve(t, req, token)
}
