package db

import (
	"time"

	"github.com/terraincognita07/goaltrack/internal/models"
	"gorm.io/gorm"
)

type NoteRepository struct {
	database *gorm.DB
}

func NewNoteRepository(database *gorm.DB) *NoteRepository {
	return &NoteRepository{database: database}
}

func (repo *NoteRepository) ListByUser(userID uint, goalID *uint, fromStart *time.Time, toEnd *time.Time) ([]models.Note, error) {
	query := repo.database.Model(&models.Note{}).Where("user_id = ?", userID)
	if goalID != nil {
		query = query.Where("goal_id = ?", *goalID)
	}
	if fromStart != nil {
		query = query.Where("note_date >= ?", *fromStart)
	}
	if toEnd != nil {
		query = query.Where("note_date < ?", *toEnd)
	}

	notes := make([]models.Note, 0)
	if err := query.Order("updated_at DESC, id DESC").Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (repo *NoteRepository) FindByIDForUser(noteID uint, userID uint) (models.Note, error) {
	note := models.Note{}
	if err := repo.database.Where("id = ? AND user_id = ?", noteID, userID).First(&note).Error; err != nil {
		return models.Note{}, err
	}
	return note, nil
}

func (repo *NoteRepository) Create(note *models.Note) error {
	return repo.database.Create(note).Error
}

func (repo *NoteRepository) Save(note *models.Note) error {
	return repo.database.Save(note).Error
}

func (repo *NoteRepository) DeleteForUser(noteID uint, userID uint) (bool, error) {
	result := repo.database.Where("id = ? AND user_id = ?", noteID, userID).Delete(&models.Note{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
