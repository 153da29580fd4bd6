package api

import "encoding/json"

type registerInput struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Timezone string `json:"timezone" form:"timezone"`
	Language string `json:"language" form:"language"`
}

type credentialsInput struct {
	Username   string `json:"username" form:"username"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

type goalInput struct {
	Title      string `json:"title"`
	Type       string `json:"type"`
	TargetDate string `json:"target_date"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	// RecurringDays accepts either a JSON array or an already encoded array string.
	RecurringDays json.RawMessage `json:"recurring_days"`
}

type goalUpdateInput struct {
	Status string `json:"status"`
	Date   string `json:"date"`
}

type noteInput struct {
	Title    *string `json:"title"`
	Content  string  `json:"content"`
	GoalID   *uint   `json:"goal_id"`
	NoteDate string  `json:"note_date"`
}

type profileInput struct {
	Email    *string `json:"email"`
	Timezone *string `json:"timezone"`
	Language *string `json:"language"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type profileView struct {
	ID       uint    `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email"`
	Timezone string  `json:"timezone"`
	Language string  `json:"language"`
}
