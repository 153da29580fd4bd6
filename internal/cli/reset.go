package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/terraincognita07/goaltrack/internal/db"
	"github.com/terraincognita07/goaltrack/internal/security"
	"github.com/terraincognita07/goaltrack/internal/services"
	"gorm.io/gorm"
)

const temporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

var ErrPasswordConfirmationMismatch = errors.New("passwords do not match")

type ResetPasswordOptions struct {
	Username string
	// Password replaces the generated temporary password when set.
	Password string
	Output   io.Writer
}

// RunResetPasswordCommand sets a new password for an existing user and
// prints it when it was generated.
func RunResetPasswordCommand(database *gorm.DB, options ResetPasswordOptions) error {
	output := options.Output
	if output == nil {
		output = os.Stdout
	}

	password := options.Password
	generated := password == ""
	if generated {
		var err error
		password, err = generateTemporaryPassword(12)
		if err != nil {
			return fmt.Errorf("generate temporary password: %w", err)
		}
	} else if err := services.ValidatePasswordStrength(password); err != nil {
		return err
	}

	authService := services.NewAuthService(db.NewRepositories(database).Users, nil)
	user, err := authService.ResetPassword(options.Username, password)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return fmt.Errorf("user %s not found", options.Username)
		}
		return err
	}

	fmt.Fprintf(output, "Password reset for %s\n", user.Username)
	if generated {
		fmt.Fprintf(output, "Temporary password: %s\n", password)
	}
	return nil
}

// PromptNewPassword reads a password and its confirmation without echo.
func PromptNewPassword(stdin *os.File, output io.Writer) (string, error) {
	reader := bufio.NewReader(stdin)

	fmt.Fprint(output, "New password: ")
	first, err := readHiddenLine(stdin, reader)
	fmt.Fprintln(output)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(output, "Confirm password: ")
	second, err := readHiddenLine(stdin, reader)
	fmt.Fprintln(output)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if first != second {
		return "", ErrPasswordConfirmationMismatch
	}
	return first, nil
}

// generateTemporaryPassword keeps drawing until the result passes the
// password strength policy.
func generateTemporaryPassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}

	for {
		password, err := security.RandomString(length, temporaryPasswordAlphabet)
		if err != nil {
			return "", err
		}
		if services.ValidatePasswordStrength(password) == nil {
			return password, nil
		}
	}
}
