package repo

import (
	"context"
	"errors"

	"DriveX/internal/cli/model"
	"DriveX/internal/kind"
)

// ErrNotFound возвращается, если запись отсутствует.
var ErrNotFound = errors.New("not found")

// FileFilter — параметры выборки списка файлов.
type FileFilter struct {
	Category kind.Category
	Search   string
	Page     int
	Size     int
}

// FileRepository определяет порт доступа к локальному набору файлов (mock mode).
type FileRepository interface {
	// Add сохраняет запись и возвращает её ID.
	Add(ctx context.Context, f *model.File) (string, error)

	// List возвращает страницу записей (новые первыми) и общее число совпадений.
	List(ctx context.Context, filter FileFilter) ([]model.File, int64, error)

	Get(ctx context.Context, id string) (*model.File, error)

	Delete(ctx context.Context, id string) error

	// TotalSize возвращает сумму размеров всех файлов.
	TotalSize(ctx context.Context) (int64, error)

	// Reset удаляет все записи и заново заполняет демонстрационный набор.
	Reset(ctx context.Context) error
}
