package model

import "time"

// Способ входа пользователя.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User — учётная запись.
type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Name     string `gorm:"not null"`
	Email    string `gorm:"uniqueIndex;not null"`
	Password string // bcrypt-хеш; пусто у пользователей Google
	Provider string `gorm:"not null;default:local"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// ResetToken — одноразовый токен сброса пароля.
type ResetToken struct {
	Token     string    `gorm:"primaryKey"`
	Email     string    `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null"`
	Used      bool      `gorm:"not null;default:false"`
}
