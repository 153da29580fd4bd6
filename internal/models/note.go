package models

import "time"

type Note struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Title     *string    `json:"title,omitempty"`
	Content   string     `gorm:"not null" json:"content"`
	GoalID    *uint      `gorm:"index" json:"goal_id,omitempty"`
	NoteDate  *time.Time `gorm:"type:date" json:"note_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
