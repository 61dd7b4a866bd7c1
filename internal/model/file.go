package model

import "time"

// File — метаданные загруженного файла пользователя.
type File struct {
	ID     string `gorm:"primaryKey;type:uuid"`
	UserID int64  `gorm:"not null;index"` // ссылка на users.id

	// Связи
	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Name        string `gorm:"not null"`
	MimeType    string `gorm:"not null"`
	Kind        string `gorm:"not null;index"` // категория по MIME, для фильтра
	Size        int64  `gorm:"not null"`
	Description string

	BlobID string `gorm:"type:uuid;not null"`
	Blob   *Blob  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Deleted bool `gorm:"not null;default:false;index"`

	UploadedAt time.Time `gorm:"autoCreateTime"`
}
