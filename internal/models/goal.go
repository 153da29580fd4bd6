package models

import "time"

const (
	GoalTypeDaily     = "daily"
	GoalTypeShortTerm = "short-term"
	GoalTypeLongTerm  = "long-term"
)

const (
	GoalStatusPending   = "pending"
	GoalStatusCompleted = "completed"
	GoalStatusArchived  = "archived"
)

type Goal struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	UserID        uint             `gorm:"not null;index" json:"user_id"`
	Title         string           `gorm:"not null" json:"title"`
	Type          string           `gorm:"not null;default:daily" json:"type"`
	Status        string           `gorm:"not null;default:pending" json:"status"`
	TargetDate    *time.Time       `gorm:"type:date" json:"target_date,omitempty"`
	StartDate     *time.Time       `gorm:"type:date" json:"start_date,omitempty"`
	EndDate       *time.Time       `gorm:"type:date" json:"end_date,omitempty"`
	RecurringDays *string          `json:"recurring_days,omitempty"`
	Completions   []GoalCompletion `gorm:"constraint:OnDelete:CASCADE" json:"completions"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func IsValidGoalType(value string) bool {
	switch value {
	case GoalTypeDaily, GoalTypeShortTerm, GoalTypeLongTerm:
		return true
	default:
		return false
	}
}

func IsValidGoalStatus(value string) bool {
	switch value {
	case GoalStatusPending, GoalStatusCompleted, GoalStatusArchived:
		return true
	default:
		return false
	}
}
