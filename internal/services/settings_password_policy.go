package services

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrSettingsPasswordChangeInvalidInput = errors.New("settings password change invalid input")
	ErrSettingsPasswordMismatch           = errors.New("settings password mismatch")
	ErrSettingsInvalidCurrentPassword     = errors.New("settings invalid current password")
	ErrSettingsNewPasswordMustDiffer      = errors.New("settings new password must differ")
	ErrSettingsWeakPassword               = errors.New("settings weak password")
)

type PasswordChange struct {
	Current string
	New     string
	Confirm string
}

func (change PasswordChange) normalized() PasswordChange {
	return PasswordChange{
		Current: strings.TrimSpace(change.Current),
		New:     strings.TrimSpace(change.New),
		Confirm: strings.TrimSpace(change.Confirm),
	}
}

func (service *SettingsService) ValidatePasswordChange(passwordHash string, change PasswordChange) error {
	change = change.normalized()

	if change.Current == "" || change.New == "" || change.Confirm == "" {
		return ErrSettingsPasswordChangeInvalidInput
	}
	if change.New != change.Confirm {
		return ErrSettingsPasswordMismatch
	}
	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(change.Current)) != nil {
		return ErrSettingsInvalidCurrentPassword
	}
	if change.Current == change.New {
		return ErrSettingsNewPasswordMustDiffer
	}
	if err := ValidatePasswordStrength(change.New); err != nil {
		// Keep the specific cause (weak or too long) reachable.
		return fmt.Errorf("%w: %w", ErrSettingsWeakPassword, err)
	}
	return nil
}
