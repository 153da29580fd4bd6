package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/terraincognita07/goaltrack/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrSettingsPasswordMissing      = errors.New("settings password missing")
	ErrSettingsPasswordInvalid      = errors.New("settings password invalid")
	ErrSettingsPasswordUpdateFailed = errors.New("settings password update failed")
	ErrSettingsEmailTaken           = errors.New("settings email already in use")
)

type SettingsUserRepository interface {
	FindByID(userID uint) (models.User, error)
	ExistsByNormalizedEmailExcept(email string, userID uint) (bool, error)
	UpdateByID(userID uint, updates map[string]any) error
	UpdatePassword(userID uint, passwordHash string) error
	DeleteAccountAndRelatedData(userID uint) error
}

// ProfileUpdate carries only the fields the caller wants changed. An empty
// Email clears the address and stops all notifications.
type ProfileUpdate struct {
	Email    *string
	Timezone *string
	Language *string
}

type SettingsService struct {
	users     SettingsUserRepository
	languages LanguageSupport
}

func NewSettingsService(users SettingsUserRepository, languages LanguageSupport) *SettingsService {
	return &SettingsService{users: users, languages: languages}
}

func (service *SettingsService) Profile(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (service *SettingsService) UpdateProfile(userID uint, update ProfileUpdate) (models.User, error) {
	updates := make(map[string]any, 3)

	if update.Email != nil {
		if strings.TrimSpace(*update.Email) == "" {
			updates["email"] = nil
		} else {
			email := NormalizeAuthEmail(*update.Email)
			if email == "" {
				return models.User{}, ErrAuthEmailInvalid
			}
			taken, err := service.users.ExistsByNormalizedEmailExcept(email, userID)
			if err != nil {
				return models.User{}, fmt.Errorf("check email: %w", err)
			}
			if taken {
				return models.User{}, ErrSettingsEmailTaken
			}
			updates["email"] = email
		}
	}
	if update.Timezone != nil {
		timezone, err := NormalizeTimezone(*update.Timezone)
		if err != nil {
			return models.User{}, err
		}
		if timezone == nil {
			updates["timezone"] = nil
		} else {
			updates["timezone"] = *timezone
		}
	}
	if update.Language != nil {
		language, err := normalizeUserLanguage(service.languages, *update.Language)
		if err != nil {
			return models.User{}, err
		}
		updates["language"] = language
	}

	if len(updates) > 0 {
		if err := service.users.UpdateByID(userID, updates); err != nil {
			return models.User{}, fmt.Errorf("update profile: %w", err)
		}
	}
	return service.Profile(userID)
}

func (service *SettingsService) ChangePassword(userID uint, passwordHash string, change PasswordChange) error {
	if err := service.ValidatePasswordChange(passwordHash, change); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(change.normalized().New), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSettingsPasswordUpdateFailed, err)
	}
	if err := service.users.UpdatePassword(userID, string(hash)); err != nil {
		return fmt.Errorf("%w: %v", ErrSettingsPasswordUpdateFailed, err)
	}
	return nil
}

func (service *SettingsService) ValidateDeleteAccountPassword(passwordHash string, rawPassword string) error {
	password := strings.TrimSpace(rawPassword)
	if password == "" {
		return ErrSettingsPasswordMissing
	}
	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
		return ErrSettingsPasswordInvalid
	}
	return nil
}

func (service *SettingsService) DeleteAccount(userID uint) error {
	return service.users.DeleteAccountAndRelatedData(userID)
}
