package models

import "time"

type Subtask struct {
	ID        uint   `gorm:"primaryKey"`
	TaskID    uint   `gorm:"not null;index"`
	Title     string `gorm:"size:200;not null"`
	Completed bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}
