package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"DriveX/internal/cli/model"
	"DriveX/internal/cli/repo"
	"DriveX/internal/kind"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// FileRepositorySQLite — локальный набор файлов для mock mode (SQLite).
type FileRepositorySQLite struct {
	db *sql.DB
}

var _ repo.FileRepository = (*FileRepositorySQLite)(nil)

// Open открывает (и создаёт при необходимости) файл БД, применяет миграции
// и заполняет демонстрационный набор, если таблица пуста.
func Open(ctx context.Context, dbPath string) (*FileRepositorySQLite, error) {
	if dbPath == "" {
		return nil, errors.New("empty mock db path")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// одно соединение: для :memory: каждая новая связь — отдельная БД
	db.SetMaxOpenConns(1)

	r := &FileRepositorySQLite{db: db}
	if err := r.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := r.seedIfEmpty(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}
	return r, nil
}

// Close закрывает соединение с БД.
func (r *FileRepositorySQLite) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Migrate гарантирует наличие необходимых таблиц/индексов.
func (r *FileRepositorySQLite) Migrate(ctx context.Context) error {
	return applyMigrations(ctx, r.db)
}

func (r *FileRepositorySQLite) seedIfEmpty(ctx context.Context) error {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return r.seed(ctx)
}

// seed вставляет набор в обратном порядке, чтобы сортировка «новые первыми»
// (по rowid при равном времени) давала исходный порядок.
func (r *FileRepositorySQLite) seed(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		// в случае некоммита — откат
		_ = tx.Rollback()
	}()

	now := time.Now().Unix()
	for i := len(demoFiles) - 1; i >= 0; i-- {
		s := demoFiles[i]
		if _, err := tx.ExecContext(ctx, `INSERT INTO files(id, name, url, mime_type, size, kind, description, uploaded_at)
            VALUES(?, ?, ?, ?, ?, ?, '', ?)`,
			uuid.NewString(), s.name, s.url, s.mime, s.size, string(kind.Classify(s.mime)), now,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Add сохраняет запись; пустые ID, Kind и время заполняются автоматически.
func (r *FileRepositorySQLite) Add(ctx context.Context, f *model.File) (string, error) {
	if f == nil || strings.TrimSpace(f.Name) == "" {
		return "", errors.New("file name is required")
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.MimeType == "" {
		f.MimeType = "application/octet-stream"
	}
	if f.Kind == "" {
		f.Kind = kind.Classify(f.MimeType)
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now()
	}
	if f.URL == "" {
		f.URL = PlaceholderURL(f.MimeType)
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO files(id, name, url, mime_type, size, kind, description, uploaded_at)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Name, f.URL, f.MimeType, f.Size, string(f.Kind), f.Description, f.UploadedAt.Unix(),
	)
	if err != nil {
		return "", err
	}
	return f.ID, nil
}

// List возвращает страницу записей, отсортированных по uploaded_at DESC.
func (r *FileRepositorySQLite) List(ctx context.Context, filter repo.FileFilter) ([]model.File, int64, error) {
	var (
		where []string
		args  []any
	)
	if filter.Category != "" && filter.Category != kind.All {
		where = append(where, "kind = ?")
		args = append(args, string(filter.Category))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, "name LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(s)+"%")
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT id, name, url, mime_type, size, kind, description, uploaded_at FROM files` + cond +
		` ORDER BY uploaded_at DESC, rowid DESC`
	if filter.Size > 0 {
		page := filter.Page
		if page < 0 {
			page = 0
		}
		q += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Size, page*filter.Size)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	res := make([]model.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, *f)
	}
	return res, total, rows.Err()
}

// Get возвращает запись по ID или repo.ErrNotFound.
func (r *FileRepositorySQLite) Get(ctx context.Context, id string) (*model.File, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, url, mime_type, size, kind, description, uploaded_at
        FROM files WHERE id = ?`, id)
	f, err := scanFile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("file %q: %w", id, repo.ErrNotFound)
		}
		return nil, err
	}
	return f, nil
}

// Delete удаляет запись по ID или возвращает repo.ErrNotFound.
func (r *FileRepositorySQLite) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("file %q: %w", id, repo.ErrNotFound)
	}
	return nil
}

func (r *FileRepositorySQLite) TotalSize(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT IFNULL(SUM(size), 0) FROM files`).Scan(&total)
	return total, err
}

// Reset очищает таблицу и заново заполняет демонстрационный набор.
func (r *FileRepositorySQLite) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM files`); err != nil {
		return err
	}
	return r.seed(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*model.File, error) {
	var (
		f        model.File
		category string
		uploaded int64
	)
	if err := s.Scan(&f.ID, &f.Name, &f.URL, &f.MimeType, &f.Size, &category, &f.Description, &uploaded); err != nil {
		return nil, err
	}
	f.Kind = kind.Category(category)
	f.UploadedAt = time.Unix(uploaded, 0)
	return &f, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
