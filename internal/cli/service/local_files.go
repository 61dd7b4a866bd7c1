package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"DriveX/internal/cli/api"

	"github.com/gabriel-vasile/mimetype"
)

// OpenLocalFiles готовит выбор для загрузки: проверяет пути и определяет MIME
// по содержимому. Сами файлы открываются позже, в свою очередь.
func OpenLocalFiles(paths []string) ([]api.UploadFile, error) {
	files := make([]api.UploadFile, 0, len(paths))
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if fi.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		ct, err := DetectContentType(p)
		if err != nil {
			return nil, err
		}
		path := p
		files = append(files, api.UploadFile{
			Name:        filepath.Base(p),
			ContentType: ct,
			Size:        fi.Size(),
			Open:        func() (io.ReadCloser, error) { return os.Open(path) },
		})
	}
	return files, nil
}

// DetectContentType возвращает MIME без параметров (charset и т.п.).
func DetectContentType(path string) (string, error) {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detect type of %s: %w", path, err)
	}
	ct, _, _ := strings.Cut(m.String(), ";")
	return strings.TrimSpace(ct), nil
}

// DownloadFile сохраняет содержимое файла id в каталог dir под его именем.
// Существующий файл не перезаписывается.
func DownloadFile(ctx context.Context, a FileAPI, token, id, dir string) (string, int64, error) {
	env, err := call(a.GetFile(ctx, token, id))
	if err != nil {
		return "", 0, err
	}
	name := filepath.Base(env.Data.Name)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = id
	}
	dst := filepath.Join(dir, name)
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, err
	}
	n, err := a.Download(ctx, env.Data.URL, token, out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", 0, err
	}
	return dst, n, nil
}

// ErrNoContent — содержимое недоступно (mock mode хранит только метаданные).
var ErrNoContent = errors.New("file content is not available in mock mode")
