package models

type User struct {
	BaseModel

	Handle       string  `gorm:"size:80;uniqueIndex;not null"`
	Email        *string `gorm:"size:120;uniqueIndex"`
	PasswordHash string  `gorm:"not null"`
}
