package models

import (
	"time"

	"gorm.io/datatypes"
)

type Task struct {
	BaseModel

	ProjectID   uint   `gorm:"not null;index"`
	Title       string `gorm:"size:200;not null"`
	Description string
	Status      string `gorm:"size:20;not null;index"`
	Priority    string `gorm:"size:20;not null"`
	DueDate     *datatypes.Date
	AssigneeID  *uint `gorm:"index"`
	CreatedByID uint  `gorm:"not null;index"`
	CompletedAt *time.Time

	// Relationships
	Assignee *User    `gorm:"foreignKey:AssigneeID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Subtasks []Subtask `gorm:"foreignKey:TaskID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// CompletionPercentage is the share of completed subtasks, rounded down.
// Subtasks must be preloaded.
func (t Task) CompletionPercentage() int {
	if len(t.Subtasks) == 0 {
		return 0
	}
	done := 0
	for _, s := range t.Subtasks {
		if s.Completed {
			done++
		}
	}
	return done * 100 / len(t.Subtasks)
}
