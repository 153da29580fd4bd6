package db

import "gorm.io/gorm"

type Repositories struct {
	Users       *UserRepository
	Goals       *GoalRepository
	Completions *CompletionRepository
	Notes       *NoteRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(database),
		Goals:       NewGoalRepository(database),
		Completions: NewCompletionRepository(database),
		Notes:       NewNoteRepository(database),
	}
}
