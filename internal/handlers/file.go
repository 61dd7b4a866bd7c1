package handlers

import (
	"DriveX/internal/config"
	"DriveX/internal/kind"
	"DriveX/internal/middleware"
	"DriveX/internal/model"
	"DriveX/internal/service"
	"bytes"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FileHandler обрабатывает /api/files/*.
type FileHandler struct {
	FileService *service.FileService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewFileHandler(fileService *service.FileService, logger *zap.SugaredLogger, cfg *config.Config) *FileHandler {
	return &FileHandler{FileService: fileService, Logger: logger, Config: cfg}
}

type fileResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	URL           string `json:"url"`
	MimeType      string `json:"mimeType"`
	Size          int64  `json:"size"`
	UploadedAt    string `json:"uploadedAt"`
	Kind          string `json:"kind"`
	Description   string `json:"description,omitempty"`
	IsPreviewable bool   `json:"isPreviewable"`
}

type fileListResponse struct {
	Page  int            `json:"page"`
	Size  int            `json:"size"`
	Total int64          `json:"total"`
	Files []fileResponse `json:"files"`
}

// contentURL — абсолютная публичная ссылка на содержимое файла.
func contentURL(r *http.Request, id string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
		scheme = p
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: "/api/files/" + id + "/content"}
	return u.String()
}

func toFileResponse(r *http.Request, f *model.File) fileResponse {
	link := contentURL(r, f.ID)
	return fileResponse{
		ID:            f.ID,
		Name:          f.Name,
		URL:           link,
		MimeType:      f.MimeType,
		Size:          f.Size,
		UploadedAt:    f.UploadedAt.UTC().Format(time.RFC3339Nano),
		Kind:          f.Kind,
		Description:   f.Description,
		IsPreviewable: kind.Preview(f.MimeType, link).Inline(),
	}
}

// Upload загрузка одного файла (multipart: file, description)
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	// Лимит общего тела запроса
	maxFile := int64(h.Config.BlobMaxSizeMB) * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxFile+1*1024*1024)

	// Парсим multipart/form-data
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Logger.Warnw("Upload: request too large", "user_id", userID, "limit", tooLarge.Limit)
			writeError(w, http.StatusRequestEntityTooLarge, "File size exceeds maximum allowed size", nil)
			return
		}
		h.Logger.Warnw("Upload: invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form", nil)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, hdr, err := r.FormFile("file")
	if err != nil {
		h.Logger.Warnw("Upload: missing file", "error", err)
		writeError(w, http.StatusBadRequest, "File is required", nil)
		return
	}
	defer file.Close()

	f, err := h.FileService.Upload(r.Context(), userID, service.UploadInput{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Description: r.FormValue("description"),
		Body:        file,
	})
	if err != nil {
		writeServiceError(w, h.Logger, "Upload", err)
		return
	}
	writeOK(w, "File uploaded successfully", toFileResponse(r, f))
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}

// List страница файлов: page, size, type, search
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	q := r.URL.Query()
	page, size := service.NormalizePage(queryInt(r, "page", 0), queryInt(r, "size", service.DefaultPageSize))

	files, total, err := h.FileService.List(r.Context(), userID, page, size, q.Get("type"), q.Get("search"))
	if err != nil {
		writeServiceError(w, h.Logger, "List", err)
		return
	}
	resp := fileListResponse{Page: page, Size: size, Total: total, Files: make([]fileResponse, 0, len(files))}
	for i := range files {
		resp.Files = append(resp.Files, toFileResponse(r, &files[i]))
	}
	writeOK(w, "", resp)
}

func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	f, err := h.FileService.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Logger, "Get", err)
		return
	}
	writeOK(w, "", toFileResponse(r, f))
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	if err := h.FileService.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.Logger, "Delete", err)
		return
	}
	writeOK(w, "File deleted successfully", nil)
}

func (h *FileHandler) Usage(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	used, err := h.FileService.Usage(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.Logger, "Usage", err)
		return
	}
	writeOK(w, "", map[string]int64{"storageUsed": used})
}

// Content отдаёт содержимое файла с поддержкой Range.
func (h *FileHandler) Content(w http.ResponseWriter, r *http.Request) {
	f, data, err := h.FileService.Content(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Logger, "Content", err)
		return
	}
	w.Header().Set("Content-Type", f.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": f.Name}))
	http.ServeContent(w, r, f.Name, f.UploadedAt, bytes.NewReader(data))
}
