package repo

import (
	"DriveX/internal/model"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// FileQuery — параметры выборки списка файлов.
type FileQuery struct {
	Kind   string // пусто или "all" — без фильтра
	Search string
	Page   int
	Size   int
}

// FileRepository — метаданные файлов. Удалённые (soft delete) не видны.
type FileRepository interface {
	Create(ctx context.Context, f *model.File) error
	List(ctx context.Context, userID int64, q FileQuery) ([]model.File, int64, error)
	GetByID(ctx context.Context, userID int64, id string) (*model.File, error)
	// GetPublic ищет файл по ID без проверки владельца (публичная ссылка).
	GetPublic(ctx context.Context, id string) (*model.File, error)
	SoftDelete(ctx context.Context, userID int64, id string) error
	TotalSize(ctx context.Context, userID int64) (int64, error)
}

type fileRepo struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) Create(ctx context.Context, f *model.File) error {
	return r.db.WithContext(ctx).Create(f).Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *fileRepo) List(ctx context.Context, userID int64, q FileQuery) ([]model.File, int64, error) {
	// новая цепочка на каждый запрос: Count и Find не делят состояние
	scoped := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&model.File{}).Where("user_id = ? AND deleted = ?", userID, false)
		if q.Kind != "" && q.Kind != "all" {
			tx = tx.Where("kind = ?", q.Kind)
		}
		if s := strings.TrimSpace(q.Search); s != "" {
			tx = tx.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(s))+"%")
		}
		return tx
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	files := make([]model.File, 0)
	err := scoped().Order("uploaded_at DESC").Order("id DESC").
		Offset(q.Page * q.Size).Limit(q.Size).
		Find(&files).Error
	if err != nil {
		return nil, 0, err
	}
	return files, total, nil
}

func (r *fileRepo) GetByID(ctx context.Context, userID int64, id string) (*model.File, error) {
	return r.first(ctx, "id = ? AND user_id = ? AND deleted = ?", id, userID, false)
}

func (r *fileRepo) GetPublic(ctx context.Context, id string) (*model.File, error) {
	return r.first(ctx, "id = ? AND deleted = ?", id, false)
}

func (r *fileRepo) first(ctx context.Context, query string, args ...any) (*model.File, error) {
	var f model.File
	err := r.db.WithContext(ctx).Where(query, args...).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fileRepo) SoftDelete(ctx context.Context, userID int64, id string) error {
	tx := r.db.WithContext(ctx).Model(&model.File{}).
		Where("id = ? AND user_id = ? AND deleted = ?", id, userID, false).
		Update("deleted", true)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *fileRepo) TotalSize(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.File{}).
		Where("user_id = ? AND deleted = ?", userID, false).
		Select("COALESCE(SUM(size), 0)").Scan(&total).Error
	return total, err
}
