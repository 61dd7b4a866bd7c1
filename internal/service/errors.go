package service

import "errors"

var (
	ErrEmailTaken          = errors.New("email address is already in use")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrWrongPassword       = errors.New("old password is incorrect")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrInvalidGoogleToken  = errors.New("invalid google authentication token")
	ErrUserNotFound        = errors.New("user not found")
	ErrFileNotFound        = errors.New("file not found")
	ErrEmptyFile           = errors.New("file is empty")
	ErrFileTooLarge        = errors.New("file size exceeds maximum allowed size")
	ErrFileTypeNotAllowed  = errors.New("file type not allowed for security reasons")
	ErrInvalidListCategory = errors.New("invalid file type filter")
)
