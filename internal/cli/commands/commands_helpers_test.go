package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"DriveX/internal/config"
)

// перехват stdout на время теста
func withStdoutCapture(t *testing.T, fn func()) string {
	t.Helper()
	old := Out
	var buf bytes.Buffer
	Out = &buf
	defer func() { Out = old }()
	fn()
	return buf.String()
}

// withInput подменяет ввод для подсказок.
func withInput(t *testing.T, input string) {
	t.Helper()
	old := In
	In = strings.NewReader(input)
	t.Cleanup(func() { In = old })
}

// testConfig — конфиг с каталогом состояния в temp.
func testConfig(t *testing.T, apiURL string) *config.Config {
	t.Helper()
	return &config.Config{
		APIBaseURL:     apiURL,
		StateDir:       t.TempDir(),
		PageSize:       20,
		StorageLimitGB: 10,
		CallbackAddr:   "127.0.0.1:0",
	}
}

// fakeBackend — минимальный бэкенд DriveX для тестов команд.
type fakeBackend struct {
	mu      sync.Mutex
	files   []map[string]any
	deleted []string
	queries []string
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer T" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Unauthorized"})
		return false
	}
	return true
}

func (b *fakeBackend) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "secret123" {
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
			"accessToken": "T", "tokenType": "Bearer", "name": "Ann", "email": req["email"],
		}})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
			"id": 1, "name": "Ann", "email": "ann@example.com", "createdAt": "2024-01-01T00:00:00Z",
		}})
	})
	mux.HandleFunc("/api/auth/google", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["accessToken"] != "g-access" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid Google token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
			"accessToken": "T", "tokenType": "Bearer", "name": "Ann", "email": "ann@example.com",
		}})
	})
	mux.HandleFunc("/api/auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Reset link sent"})
	})
	mux.HandleFunc("/api/files/usage", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"storageUsed": 1 << 30}})
	})
	mux.HandleFunc("/api/files/upload", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(w, r) {
			return
		}
		_, hdr, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "file is required"})
			return
		}
		if strings.HasPrefix(hdr.Filename, "bad") {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "File type not allowed"})
			return
		}
		b.mu.Lock()
		f := map[string]any{"id": len(b.files) + 1, "name": hdr.Filename, "mimeType": hdr.Header.Get("Content-Type"), "size": hdr.Size}
		b.files = append(b.files, f)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": f})
	})
	mux.HandleFunc("/api/files", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(w, r) {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		b.queries = append(b.queries, r.URL.RawQuery)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
			"page": 0, "size": 20, "total": len(b.files), "files": b.files,
		}})
	})
	mux.HandleFunc("/api/files/", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(w, r) {
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/api/files/")
		if strings.HasSuffix(id, "/content") {
			_, _ = w.Write([]byte("file-content"))
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, f := range b.files {
			if toString(f["id"]) != id {
				continue
			}
			if r.Method == http.MethodDelete {
				b.files = append(b.files[:i], b.files[i+1:]...)
				b.deleted = append(b.deleted, id)
				writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "File deleted successfully"})
				return
			}
			out := map[string]any{"url": "/api/files/" + id + "/content"}
			for k, v := range f {
				out[k] = v
			}
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": out})
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "File not found"})
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func toString(v any) string {
	b, _ := json.Marshal(v)
	return strings.Trim(string(b), `"`)
}
