package db

import (
	"time"

	"github.com/terraincognita07/goaltrack/internal/models"
	"gorm.io/gorm"
)

type GoalRepository struct {
	database *gorm.DB
}

func NewGoalRepository(database *gorm.DB) *GoalRepository {
	return &GoalRepository{database: database}
}

// ListByUser returns the user's goals newest first. An empty goalType lists
// every type. Completions are preloaded in date order.
func (repo *GoalRepository) ListByUser(userID uint, goalType string) ([]models.Goal, error) {
	query := repo.database.
		Preload("Completions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("date ASC, id ASC")
		}).
		Where("user_id = ?", userID)
	if goalType != "" {
		query = query.Where("type = ?", goalType)
	}

	goals := make([]models.Goal, 0)
	if err := query.Order("created_at DESC, id DESC").Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

// ListByUserWithCompletionsInRange preloads only the completions dated in
// [fromStart, toEnd).
func (repo *GoalRepository) ListByUserWithCompletionsInRange(userID uint, fromStart time.Time, toEnd time.Time) ([]models.Goal, error) {
	goals := make([]models.Goal, 0)
	if err := repo.database.
		Preload("Completions", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("date >= ? AND date < ?", fromStart, toEnd).Order("date ASC, id ASC")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

func (repo *GoalRepository) FindByIDForUser(goalID uint, userID uint) (models.Goal, error) {
	goal := models.Goal{}
	if err := repo.database.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		return models.Goal{}, err
	}
	return goal, nil
}

func (repo *GoalRepository) ExistsForUser(goalID uint, userID uint) (bool, error) {
	var count int64
	if err := repo.database.Model(&models.Goal{}).
		Where("id = ? AND user_id = ?", goalID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (repo *GoalRepository) Create(goal *models.Goal) error {
	return repo.database.Create(goal).Error
}

func (repo *GoalRepository) UpdateStatus(goalID uint, status string) error {
	return repo.database.Model(&models.Goal{}).Where("id = ?", goalID).Update("status", status).Error
}

// DeleteForUser removes the goal with its completions and detaches any notes
// that referenced it. It reports false when the user owns no such goal.
func (repo *GoalRepository) DeleteForUser(goalID uint, userID uint) (bool, error) {
	deleted := false
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", goalID, userID).Limit(1).Find(&models.Goal{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := tx.Where("goal_id = ?", goalID).Delete(&models.GoalCompletion{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Note{}).Where("goal_id = ?", goalID).Update("goal_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ? AND user_id = ?", goalID, userID).Delete(&models.Goal{}).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}
