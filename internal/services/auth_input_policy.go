package services

import (
	"errors"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxUsernameLength = 64

var (
	ErrAuthCredentialsInvalid = errors.New("auth credentials invalid")
	ErrAuthUsernameInvalid    = errors.New("auth username invalid")
	ErrAuthEmailInvalid       = errors.New("auth email invalid")
)

func NormalizeAuthEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ""
	}
	return email
}

// NormalizeUsername trims the input and rejects empty, overlong or
// whitespace-containing names. Case is preserved.
func NormalizeUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	if username == "" || utf8.RuneCountInString(username) > maxUsernameLength {
		return "", ErrAuthUsernameInvalid
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return "", ErrAuthUsernameInvalid
	}
	return username, nil
}

func NormalizeCredentialsInput(usernameRaw string, passwordRaw string) (string, string, error) {
	username, err := NormalizeUsername(usernameRaw)
	if err != nil {
		return "", "", ErrAuthCredentialsInvalid
	}
	password := strings.TrimSpace(passwordRaw)
	if password == "" {
		return "", "", ErrAuthCredentialsInvalid
	}
	return username, password, nil
}
