package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"DriveX/internal/cli/api"
	"DriveX/internal/cli/model"
	"DriveX/internal/cli/repo"
	"DriveX/internal/kind"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// MockToken подставляется вместо токена сессии в mock mode.
const MockToken = "mock-token"

// MockFileAPI реализует FileAPI поверх локального набора файлов.
// Токен не проверяется.
type MockFileAPI struct {
	repo   repo.FileRepository
	logger *zap.SugaredLogger
}

var _ FileAPI = (*MockFileAPI)(nil)

func NewMockFileAPI(r repo.FileRepository, logger *zap.SugaredLogger) *MockFileAPI {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &MockFileAPI{repo: r, logger: logger}
}

func ok[T any](data T, msg string) *api.Envelope[T] {
	return &api.Envelope[T]{Success: true, Message: msg, Data: data}
}

func notFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return &api.Error{Status: http.StatusNotFound, Message: "File not found", Err: err}
	}
	return err
}

// UploadFile читает содержимое только для подсчёта размера и типа.
func (m *MockFileAPI) UploadFile(ctx context.Context, _ string, f api.UploadFile, description string) (*api.Envelope[api.FileItem], error) {
	ct, size := f.ContentType, f.Size
	if f.Open != nil {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		cr := &countingReader{r: rc}
		if ct == "" {
			mt, err := mimetype.DetectReader(cr)
			if err != nil {
				return nil, err
			}
			ct, _, _ = strings.Cut(mt.String(), ";")
		}
		if size == 0 {
			if _, err := io.Copy(io.Discard, cr); err != nil {
				return nil, err
			}
			size = cr.n
		}
	}
	name := f.Name
	if name == "" {
		name = "Untitled"
	}
	mf := &model.File{Name: name, MimeType: ct, Size: size, Description: description}
	if _, err := m.repo.Add(ctx, mf); err != nil {
		return nil, err
	}
	m.logger.Debugw("mock upload", "name", mf.Name, "size", mf.Size)
	return ok(toItem(*mf), "File uploaded successfully"), nil
}

func (m *MockFileAPI) ListFiles(ctx context.Context, _ string, q api.ListQuery) (*api.Envelope[api.FileList], error) {
	cat, err := kind.ParseCategory(q.Type)
	if err != nil {
		return &api.Envelope[api.FileList]{Success: false, Message: err.Error()}, nil
	}
	files, total, err := m.repo.List(ctx, repo.FileFilter{Category: cat, Search: q.Search, Page: q.Page, Size: q.Size})
	if err != nil {
		return nil, err
	}
	list := api.FileList{Page: q.Page, Size: q.Size, Total: total, Files: make([]api.FileItem, 0, len(files))}
	for _, f := range files {
		list.Files = append(list.Files, toItem(f))
	}
	return ok(list, ""), nil
}

func (m *MockFileAPI) GetFile(ctx context.Context, _ string, id string) (*api.Envelope[api.FileItem], error) {
	f, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return ok(toItem(*f), ""), nil
}

func (m *MockFileAPI) DeleteFile(ctx context.Context, _ string, id string) (*api.MessageEnvelope, error) {
	if err := m.repo.Delete(ctx, id); err != nil {
		return nil, notFound(err)
	}
	return ok(json.RawMessage("null"), "File deleted successfully"), nil
}

func (m *MockFileAPI) StorageUsage(ctx context.Context, _ string) (*api.Envelope[api.StorageUsage], error) {
	n, err := m.repo.TotalSize(ctx)
	if err != nil {
		return nil, err
	}
	return ok(api.StorageUsage{StorageUsed: n}, ""), nil
}

func (m *MockFileAPI) Download(context.Context, string, string, io.Writer) (int64, error) {
	return 0, ErrNoContent
}

// Reset возвращает демонстрационный набор.
func (m *MockFileAPI) Reset(ctx context.Context) error {
	return m.repo.Reset(ctx)
}

func toItem(f model.File) api.FileItem {
	return api.FileItem{
		ID:          api.ID(f.ID),
		Name:        f.Name,
		URL:         f.URL,
		MimeType:    f.MimeType,
		Size:        f.Size,
		UploadedAt:  f.UploadedAt.UTC().Format(time.RFC3339),
		Kind:        string(f.Kind),
		Description: f.Description,
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Me возвращает демонстрационного пользователя.
func (m *MockFileAPI) Me(context.Context, string) (*api.Envelope[api.User], error) {
	return ok(api.User{ID: "mock", Name: "Demo User", Email: "demo@drivex.local"}, ""), nil
}
