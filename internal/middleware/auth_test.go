package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// Тест: IssueToken + WithAuth — user_id попадает в контекст
func TestWithAuth_ValidTokenSetsUserID(t *testing.T) {
	const secret = "test-secret"

	var got int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := GetUserIDFromContext(r.Context()); ok {
			got = uid
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})

	h := WithAuth(secret)(next)

	token, err := IssueToken(77, "ann", secret, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || got != 77 {
		t.Fatalf("expected 200 and uid 77, got %d uid=%d", rr.Code, got)
	}
}

// Тест: отсутствие заголовка — user_id не устанавливается
func TestWithAuth_NoHeaderLeavesAnonymous(t *testing.T) {
	h := WithAuth("any-secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserIDFromContext(r.Context()); ok {
			t.Fatalf("user id must not be set without token")
		}
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

// Тест: невалидный или просроченный токен — user_id не устанавливается
func TestWithAuth_InvalidToken(t *testing.T) {
	// токен с секретом A, проверка секретом B
	wrongSecret, _ := IssueToken(5, "", "secret-A", time.Hour)
	expired, _ := IssueToken(5, "", "secret-B", -time.Minute)

	h := WithAuth("secret-B")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserIDFromContext(r.Context()); ok {
			t.Fatalf("user id must not be set with invalid token")
		}
		w.WriteHeader(http.StatusOK)
	}))

	for _, header := range []string{"Bearer " + wrongSecret, "Bearer " + expired, "Basic abc", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	}
}

func TestParseToken_RoundTrip(t *testing.T) {
	token, err := IssueToken(42, "ann", "s", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	id, err := ParseToken(token, "s")
	if err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (%v)", id, err)
	}
}
