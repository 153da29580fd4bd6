package models

import (
	"strings"
	"time"
	// Zone lookups must not depend on the host zoneinfo.
	_ "time/tzdata"
)

const DefaultLanguage = "en"

type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Username         string     `gorm:"uniqueIndex;not null" json:"username"`
	Email            *string    `json:"email,omitempty"`
	PasswordHash     string     `gorm:"not null" json:"-"`
	Timezone         *string    `json:"timezone,omitempty"`
	Language         string     `gorm:"not null;default:en" json:"language"`
	RewardEmailCount int        `gorm:"not null;default:0" json:"-"`
	LastRewardDate   *time.Time `gorm:"type:date" json:"-"`
	Goals            []Goal     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Location resolves the configured timezone, falling back to UTC when it is
// missing or unknown.
func (user User) Location() *time.Location {
	if user.Timezone == nil {
		return time.UTC
	}
	name := strings.TrimSpace(*user.Timezone)
	if name == "" {
		return time.UTC
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return location
}

func (user User) HasEmail() bool {
	return user.Email != nil && strings.TrimSpace(*user.Email) != ""
}

func (user User) EmailAddress() string {
	if user.Email == nil {
		return ""
	}
	return strings.TrimSpace(*user.Email)
}
