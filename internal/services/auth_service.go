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
	ErrRegistrationFieldsRequired = errors.New("username, email and password are required")
	ErrUserAlreadyExists          = errors.New("user with this username or email already exists")
	ErrUserNotFound               = errors.New("user not found")
	ErrTimezoneInvalid            = errors.New("timezone invalid")
	ErrLanguageUnsupported        = errors.New("language unsupported")
)

type AuthUserRepository interface {
	ExistsByUsernameOrEmail(username string, email string) (bool, error)
	FindByUsername(username string) (models.User, error)
	FindByID(userID uint) (models.User, error)
	Create(user *models.User) error
	UpdatePassword(userID uint, passwordHash string) error
}

// LanguageSupport reports whether a language tag has a loaded locale.
type LanguageSupport interface {
	IsSupported(raw string) bool
}

type RegistrationInput struct {
	Username string
	Email    string
	Password string
	Timezone string
	Language string
}

type AuthService struct {
	users     AuthUserRepository
	languages LanguageSupport
}

func NewAuthService(users AuthUserRepository, languages LanguageSupport) *AuthService {
	return &AuthService{users: users, languages: languages}
}

func (service *AuthService) Register(input RegistrationInput) (models.User, error) {
	if strings.TrimSpace(input.Username) == "" || strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Password) == "" {
		return models.User{}, ErrRegistrationFieldsRequired
	}

	username, err := NormalizeUsername(input.Username)
	if err != nil {
		return models.User{}, err
	}
	email := NormalizeAuthEmail(input.Email)
	if email == "" {
		return models.User{}, ErrAuthEmailInvalid
	}
	if err := ValidatePasswordStrength(input.Password); err != nil {
		return models.User{}, err
	}
	timezone, err := NormalizeTimezone(input.Timezone)
	if err != nil {
		return models.User{}, err
	}
	language, err := normalizeUserLanguage(service.languages, input.Language)
	if err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByUsernameOrEmail(username, email)
	if err != nil {
		return models.User{}, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return models.User{}, ErrUserAlreadyExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        &email,
		PasswordHash: string(passwordHash),
		Timezone:     timezone,
		Language:     language,
	}
	if err := service.users.Create(&user); err != nil {
		// The unique indexes catch a registration racing the existence check.
		exists, existsErr := service.users.ExistsByUsernameOrEmail(username, email)
		if existsErr == nil && exists {
			return models.User{}, ErrUserAlreadyExists
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (service *AuthService) Authenticate(usernameRaw string, passwordRaw string) (models.User, error) {
	username, password, err := NormalizeCredentialsInput(usernameRaw, passwordRaw)
	if err != nil {
		return models.User{}, err
	}

	user, err := service.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrAuthCredentialsInvalid
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	return user, nil
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// ResetPassword replaces the password of the named user with a new bcrypt hash.
func (service *AuthService) ResetPassword(usernameRaw string, newPassword string) (models.User, error) {
	username, err := NormalizeUsername(usernameRaw)
	if err != nil {
		return models.User{}, err
	}
	user, err := service.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	if err := service.users.UpdatePassword(user.ID, string(passwordHash)); err != nil {
		return models.User{}, fmt.Errorf("update password: %w", err)
	}
	user.PasswordHash = string(passwordHash)
	return user, nil
}
