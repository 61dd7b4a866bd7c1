package service

import (
	"context"
	"errors"
	"fmt"

	"DriveX/internal/cli/api"

	"go.uber.org/zap"
)

const defaultUploadMessage = "Upload failed"

// Progress — состояние последовательной загрузки.
type Progress struct {
	Percent   float64
	Completed int
	Total     int
	Current   string
}

type UploadOptions struct {
	Description string
	// OnProgress вызывается перед каждым файлом и после каждого успешного.
	OnProgress func(Progress)
	// OnUploaded вызывается один раз после загрузки всех файлов (обновление списка).
	OnUploaded func()
}

type UploadResult struct {
	Uploaded []api.FileItem
	Progress Progress
}

// UploadError описывает первый неудачный файл; загрузка на нём остановлена.
type UploadError struct {
	Index   int
	Name    string
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	var apiErr *api.Error
	if e.Err != nil && !errors.As(e.Err, &apiErr) {
		return fmt.Sprintf("%s: %s: %v", e.Name, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

func (e *UploadError) Unwrap() error { return e.Err }

// Uploader отправляет файлы строго по одному, в порядке выбора.
type Uploader struct {
	api    FileAPI
	logger *zap.SugaredLogger
}

func NewUploader(a FileAPI, logger *zap.SugaredLogger) *Uploader {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Uploader{api: a, logger: logger}
}

// Upload загружает файлы последовательно. Пустой выбор или токен — no-op.
// При первой ошибке загрузка прерывается; уже загруженные файлы остаются.
func (u *Uploader) Upload(ctx context.Context, token string, files []api.UploadFile, opts UploadOptions) (UploadResult, error) {
	var res UploadResult
	if len(files) == 0 || token == "" {
		return res, nil
	}
	total := len(files)
	report := func() {
		if opts.OnProgress != nil {
			opts.OnProgress(res.Progress)
		}
	}
	res.Progress = Progress{Total: total}

	for i, f := range files {
		res.Progress.Current = f.Name
		report()

		item, err := u.uploadOne(ctx, token, f, opts.Description)
		if err != nil {
			uerr := &UploadError{Index: i, Name: f.Name, Message: uploadMessage(err), Err: err}
			u.logger.Warnw("upload aborted", "file", f.Name, "index", i, "error", err)
			return res, uerr
		}
		res.Uploaded = append(res.Uploaded, *item)
		res.Progress.Completed = i + 1
		res.Progress.Percent = float64(i+1) / float64(total) * 100
		report()
		u.logger.Debugw("uploaded", "file", f.Name, "completed", i+1, "total", total)
	}

	if opts.OnUploaded != nil {
		opts.OnUploaded()
	}
	// сбрасываем прогресс после успешной загрузки
	res.Progress = Progress{}
	return res, nil
}

func (u *Uploader) uploadOne(ctx context.Context, token string, f api.UploadFile, description string) (*api.FileItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env, err := call(u.api.UploadFile(ctx, token, f, description))
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func uploadMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return defaultUploadMessage
}
