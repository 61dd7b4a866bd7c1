package service

import (
	"DriveX/internal/kind"
	"DriveX/internal/model"
	"DriveX/internal/repo"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var (
	dangerousMimeMarkers = []string{
		"executable", "application/x-msdownload", "application/x-msdos-program",
		"application/x-msi", "application/x-bat", "application/x-sh", "x-shellscript",
	}
	dangerousExtensions = []string{
		".exe", ".bat", ".cmd", ".com", ".scr", ".pif",
		".msi", ".dll", ".sh", ".ps1", ".vbs", ".js", ".jar",
	}
)

// FileService — загрузка, выборка и удаление файлов пользователя.
type FileService struct {
	files    repo.FileRepository
	blobs    repo.BlobRepository
	maxBytes int64
	logger   *zap.SugaredLogger
}

func NewFileService(files repo.FileRepository, blobs repo.BlobRepository, maxBytes int64, logger *zap.SugaredLogger) *FileService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &FileService{files: files, blobs: blobs, maxBytes: maxBytes, logger: logger}
}

// UploadInput — одна часть multipart-запроса.
type UploadInput struct {
	Name        string
	ContentType string
	Description string
	Body        io.Reader
}

// Upload сохраняет содержимое и метаданные. MIME определяется по содержимому;
// заявленный тип используется, только если содержимое не распознано.
func (s *FileService) Upload(ctx context.Context, userID int64, in UploadInput) (*model.File, error) {
	data, err := io.ReadAll(io.LimitReader(in.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	name := cleanFileName(in.Name)
	mime := detectMimeType(data, in.ContentType)
	s.logger.Infow("upload", "user_id", userID, "name", name, "mime", mime, "size", len(data))
	if isDangerousFile(mime, name) {
		return nil, fmt.Errorf("%w: %s", ErrFileTypeNotAllowed, mime)
	}

	blobID := uuid.NewString()
	if _, err := s.blobs.CreateIfAbsent(ctx, blobID, data); err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}
	f := &model.File{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		MimeType:    mime,
		Kind:        kind.Classify(mime).String(),
		Size:        int64(len(data)),
		Description: strings.TrimSpace(in.Description),
		BlobID:      blobID,
	}
	if err := s.files.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}
	return f, nil
}

// List возвращает страницу файлов. page начинается с 0.
func (s *FileService) List(ctx context.Context, userID int64, page, size int, typ, search string) ([]model.File, int64, error) {
	cat, err := kind.ParseCategory(typ)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidListCategory, typ)
	}
	page, size = NormalizePage(page, size)
	return s.files.List(ctx, userID, repo.FileQuery{Kind: cat.String(), Search: search, Page: page, Size: size})
}

// NormalizePage приводит номер и размер страницы к допустимым значениям.
func NormalizePage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	return page, min(size, MaxPageSize)
}

func (s *FileService) Get(ctx context.Context, userID int64, id string) (*model.File, error) {
	f, err := s.files.GetByID(ctx, userID, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrFileNotFound
	}
	return f, err
}

// Delete помечает файл удалённым; содержимое остаётся до очистки БД.
func (s *FileService) Delete(ctx context.Context, userID int64, id string) error {
	err := s.files.SoftDelete(ctx, userID, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrFileNotFound
	}
	if err == nil {
		s.logger.Infow("file deleted", "user_id", userID, "file_id", id)
	}
	return err
}

func (s *FileService) Usage(ctx context.Context, userID int64) (int64, error) {
	return s.files.TotalSize(ctx, userID)
}

// Content возвращает файл и его содержимое по публичной ссылке.
func (s *FileService) Content(ctx context.Context, id string) (*model.File, []byte, error) {
	f, err := s.files.GetPublic(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil, ErrFileNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	b, err := s.blobs.Get(ctx, f.BlobID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil, ErrFileNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return f, b.Data, nil
}

func cleanFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}

func detectMimeType(data []byte, declared string) string {
	detected := mimetype.Detect(data)
	declared, _, _ = strings.Cut(declared, ";")
	declared = strings.ToLower(strings.TrimSpace(declared))
	if detected.Is("application/octet-stream") && declared != "" {
		return declared
	}
	mime, _, _ := strings.Cut(detected.String(), ";")
	return mime
}

func isDangerousFile(mime, name string) bool {
	m := strings.ToLower(mime)
	for _, marker := range dangerousMimeMarkers {
		if strings.Contains(m, marker) {
			return true
		}
	}
	n := strings.ToLower(name)
	for _, ext := range dangerousExtensions {
		if strings.HasSuffix(n, ext) {
			return true
		}
	}
	return false
}
