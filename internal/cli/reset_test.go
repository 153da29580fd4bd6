package cli

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/terraincognita07/goaltrack/internal/db"
	"github.com/terraincognita07/goaltrack/internal/models"
	"github.com/terraincognita07/goaltrack/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func openResetTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "goaltrack-cli-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	user := models.User{Username: "maya", PasswordHash: "old-hash"}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return database
}

func loadPasswordHash(t *testing.T, database *gorm.DB) string {
	t.Helper()

	user := models.User{}
	if err := database.Where("username = ?", "maya").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	return user.PasswordHash
}

func TestGenerateTemporaryPasswordMinimumLength(t *testing.T) {
	t.Parallel()

	password, err := generateTemporaryPassword(4)
	if err != nil {
		t.Fatalf("generateTemporaryPassword returned error: %v", err)
	}
	if len(password) != 8 {
		t.Fatalf("generateTemporaryPassword minimum len = %d, want 8", len(password))
	}
}

func TestGenerateTemporaryPasswordAlphabetAndStrength(t *testing.T) {
	t.Parallel()

	password, err := generateTemporaryPassword(24)
	if err != nil {
		t.Fatalf("generateTemporaryPassword returned error: %v", err)
	}
	if len(password) != 24 {
		t.Fatalf("generateTemporaryPassword len = %d, want 24", len(password))
	}
	for _, char := range password {
		if !strings.ContainsRune(temporaryPasswordAlphabet, char) {
			t.Fatalf("password %q contains char %q outside alphabet", password, char)
		}
	}
	if err := services.ValidatePasswordStrength(password); err != nil {
		t.Fatalf("generated password %q is weak: %v", password, err)
	}
}

func TestRunResetPasswordCommandGeneratesPassword(t *testing.T) {
	database := openResetTestDatabase(t)
	output := &bytes.Buffer{}

	if err := RunResetPasswordCommand(database, ResetPasswordOptions{Username: " maya ", Output: output}); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	printed := output.String()
	prefix := "Temporary password: "
	index := strings.Index(printed, prefix)
	if index < 0 {
		t.Fatalf("expected temporary password in output, got %q", printed)
	}
	password := strings.TrimSpace(printed[index+len(prefix):])

	if err := bcrypt.CompareHashAndPassword([]byte(loadPasswordHash(t, database)), []byte(password)); err != nil {
		t.Fatalf("stored hash does not match printed password: %v", err)
	}
}

func TestRunResetPasswordCommandWithChosenPassword(t *testing.T) {
	database := openResetTestDatabase(t)
	output := &bytes.Buffer{}

	err := RunResetPasswordCommand(database, ResetPasswordOptions{Username: "maya", Password: "weak", Output: output})
	if !errors.Is(err, services.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if loadPasswordHash(t, database) != "old-hash" {
		t.Fatal("expected weak password to leave the hash untouched")
	}

	if err := RunResetPasswordCommand(database, ResetPasswordOptions{Username: "maya", Password: "ChosenPass9", Output: output}); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if strings.Contains(output.String(), "ChosenPass9") {
		t.Fatal("chosen password must not be printed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(loadPasswordHash(t, database)), []byte("ChosenPass9")); err != nil {
		t.Fatalf("stored hash does not match chosen password: %v", err)
	}
}

func TestRunResetPasswordCommandUnknownUser(t *testing.T) {
	database := openResetTestDatabase(t)

	err := RunResetPasswordCommand(database, ResetPasswordOptions{Username: "ghost", Output: &bytes.Buffer{}})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}
