package domain

import "time"

// Task is one unit of work owned by exactly one user. There is no DeletedAt
// column: deleting a task removes the row.
type Task struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	Complete    bool   `gorm:"not null;default:false"`
	UserID      uint   `gorm:"not null;index"` // owner, set once at creation
	User        User   `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
