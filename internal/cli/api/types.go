package api

import (
	"bytes"
	"encoding/json"
	"io"
)

// ID is an identifier the backend may encode either as a JSON string or number.
type ID string

// UnmarshalJSON accepts "abc", 42 and null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// User is the profile returned by /auth/me.
type User struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// AuthResponse is the payload of login, register and google exchanges.
type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
	Name        string `json:"name"`
	Email       string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleAuthRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// FileItem mirrors the backend file metadata.
type FileItem struct {
	ID            ID     `json:"id"`
	Name          string `json:"name"`
	URL           string `json:"url"`
	MimeType      string `json:"mimeType"`
	Size          int64  `json:"size"`
	UploadedAt    string `json:"uploadedAt"`
	Kind          string `json:"kind"`
	Description   string `json:"description,omitempty"`
	IsPreviewable *bool  `json:"isPreviewable,omitempty"`
}

// FileList is one page of the file listing.
type FileList struct {
	Page  int        `json:"page"`
	Size  int        `json:"size"`
	Total int64      `json:"total"`
	Files []FileItem `json:"files"`
}

type StorageUsage struct {
	StorageUsed int64 `json:"storageUsed"`
}

// ListQuery holds the query parameters of GET /files.
type ListQuery struct {
	Page   int
	Size   int
	Type   string
	Search string
}

// UploadFile describes one file of an upload selection. Open is called
// when the file's turn comes, so a selection does not hold open descriptors.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}
