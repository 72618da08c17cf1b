package models

import "time"

// BaseModel is gorm.Model without soft deletes: rows removed by the
// services are gone for good.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}
