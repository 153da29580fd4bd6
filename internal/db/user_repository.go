package db

import (
	"context"
	"time"

	"github.com/terraincognita07/goaltrack/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) FindByID(userID uint) (models.User, error) {
	var user models.User
	if err := repo.database.First(&user, userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByUsername(username string) (models.User, error) {
	var user models.User
	if err := repo.database.Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) ExistsByUsernameOrEmail(username string, email string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).
		Where("username = ? OR (email IS NOT NULL AND lower(trim(email)) = ?)", username, email).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) ExistsByNormalizedEmailExcept(email string, userID uint) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).
		Where("email IS NOT NULL AND lower(trim(email)) = ? AND id <> ?", email, userID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) Create(user *models.User) error {
	return repo.database.Create(user).Error
}

func (repo *UserRepository) UpdateByID(userID uint, updates map[string]any) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}

func (repo *UserRepository) UpdatePassword(userID uint, passwordHash string) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", passwordHash).Error
}

// ListWithGoals returns every user with their goals preloaded, ordered by id.
func (repo *UserRepository) ListWithGoals(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := repo.database.WithContext(ctx).
		Preload("Goals", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("id ASC")
		}).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ClaimRewardSlot increments the daily reward counter in a single conditional
// statement. The counter restarts at 1 when the last reward was sent on a
// different day. It reports false when the limit for [dayStart, dayEnd) is
// already reached.
func (repo *UserRepository) ClaimRewardSlot(ctx context.Context, userID uint, dayStart time.Time, dayEnd time.Time, limit int) (bool, error) {
	if limit <= 0 {
		return false, nil
	}

	result := repo.database.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Where(
			"(last_reward_date IS NULL OR last_reward_date < ? OR last_reward_date >= ? OR reward_email_count < ?)",
			dayStart, dayEnd, limit,
		).
		Updates(map[string]any{
			"reward_email_count": gorm.Expr(
				"CASE WHEN last_reward_date >= ? AND last_reward_date < ? THEN reward_email_count + 1 ELSE 1 END",
				dayStart, dayEnd,
			),
			"last_reward_date": dayStart,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (repo *UserRepository) DeleteAccountAndRelatedData(userID uint) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		goalIDs := tx.Model(&models.Goal{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("goal_id IN (?)", goalIDs).Delete(&models.GoalCompletion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Note{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Goal{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
}
