package model

// Серверная модель Blob — бинарное содержимое файла.
type Blob struct {
	ID string `gorm:"primaryKey;type:uuid"`

	Data []byte `gorm:"not null"`
}
