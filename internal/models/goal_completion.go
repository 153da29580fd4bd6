package models

import "time"

type GoalCompletion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GoalID    uint      `gorm:"not null;uniqueIndex:uidx_goal_date" json:"goal_id"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:uidx_goal_date" json:"date"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
