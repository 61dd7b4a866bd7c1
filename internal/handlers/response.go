package handlers

import (
	"DriveX/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// envelope — общий формат всех ответов API.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: false, Message: message, Data: data})
}

// статусы ответов для ошибок сервисов
var serviceErrorStatus = []struct {
	err    error
	status int
}{
	{service.ErrEmailTaken, http.StatusBadRequest},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrWrongPassword, http.StatusBadRequest},
	{service.ErrInvalidResetToken, http.StatusBadRequest},
	{service.ErrInvalidGoogleToken, http.StatusBadRequest},
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrFileNotFound, http.StatusNotFound},
	{service.ErrEmptyFile, http.StatusBadRequest},
	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
	{service.ErrFileTypeNotAllowed, http.StatusBadRequest},
	{service.ErrInvalidListCategory, http.StatusBadRequest},
}

// writeServiceError переводит ошибку сервиса в ответ; подробности только в логе, неизвестные — 500.
func writeServiceError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error) {
	for _, e := range serviceErrorStatus {
		if errors.Is(err, e.err) {
			logger.Warnw(op, "error", err)
			writeError(w, e.status, sentence(e.err.Error()), nil)
			return
		}
	}
	logger.Errorw(op+": unexpected error", "error", err)
	writeError(w, http.StatusInternalServerError, "An unexpected error occurred", nil)
}

func sentence(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
