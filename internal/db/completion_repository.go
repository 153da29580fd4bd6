package db

import (
	"context"
	"time"

	"github.com/terraincognita07/goaltrack/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var completionConflictColumns = []clause.Column{{Name: "goal_id"}, {Name: "date"}}

type CompletionRepository struct {
	database *gorm.DB
}

func NewCompletionRepository(database *gorm.DB) *CompletionRepository {
	return &CompletionRepository{database: database}
}

func (repo *CompletionRepository) ListForGoalsInRange(ctx context.Context, goalIDs []uint, dayStart time.Time, dayEnd time.Time) ([]models.GoalCompletion, error) {
	completions := make([]models.GoalCompletion, 0)
	if len(goalIDs) == 0 {
		return completions, nil
	}
	if err := repo.database.WithContext(ctx).
		Where("goal_id IN ? AND date >= ? AND date < ?", goalIDs, dayStart, dayEnd).
		Order("goal_id ASC, date ASC").
		Find(&completions).Error; err != nil {
		return nil, err
	}
	return completions, nil
}

func (repo *CompletionRepository) FindByGoalAndDay(goalID uint, day time.Time) (models.GoalCompletion, error) {
	completion := models.GoalCompletion{}
	if err := repo.database.Where("goal_id = ? AND date = ?", goalID, day).First(&completion).Error; err != nil {
		return models.GoalCompletion{}, err
	}
	return completion, nil
}

// Upsert writes the completion flag for (goalID, day), creating the record on
// first use.
func (repo *CompletionRepository) Upsert(goalID uint, day time.Time, completed bool) (models.GoalCompletion, error) {
	completion := models.GoalCompletion{GoalID: goalID, Date: day, Completed: completed}
	if err := repo.database.
		Select("goal_id", "date", "completed", "created_at", "updated_at").
		Clauses(clause.OnConflict{
			Columns:   completionConflictColumns,
			DoUpdates: clause.AssignmentColumns([]string{"completed", "updated_at"}),
		}).
		Create(&completion).Error; err != nil {
		return models.GoalCompletion{}, err
	}
	return repo.FindByGoalAndDay(goalID, day)
}

// Toggle flips the completion flag for (goalID, day) in one statement. A
// missing record is created as completed.
func (repo *CompletionRepository) Toggle(goalID uint, day time.Time) (models.GoalCompletion, error) {
	completion := models.GoalCompletion{GoalID: goalID, Date: day, Completed: true}
	if err := repo.database.
		Clauses(clause.OnConflict{
			Columns: completionConflictColumns,
			DoUpdates: clause.Assignments(map[string]any{
				"completed":  gorm.Expr("NOT goal_completions.completed"),
				"updated_at": time.Now().UTC(),
			}),
		}).
		Create(&completion).Error; err != nil {
		return models.GoalCompletion{}, err
	}
	return repo.FindByGoalAndDay(goalID, day)
}
