package services

import (
	"strings"
	"time"

	"github.com/terraincognita07/goaltrack/internal/models"
)

// NormalizeTimezone returns nil for blank input and rejects names the tz
// database does not know.
func NormalizeTimezone(raw string) (*string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return nil, nil
	}
	if name == "Local" {
		return nil, ErrTimezoneInvalid
	}
	if _, err := time.LoadLocation(name); err != nil {
		return nil, ErrTimezoneInvalid
	}
	return &name, nil
}

func normalizeUserLanguage(languages LanguageSupport, raw string) (string, error) {
	language := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")
	if separator := strings.Index(language, "-"); separator >= 0 {
		language = language[:separator]
	}
	if language == "" {
		return models.DefaultLanguage, nil
	}
	if language == models.DefaultLanguage {
		return language, nil
	}
	if languages == nil || !languages.IsSupported(language) {
		return "", ErrLanguageUnsupported
	}
	return language, nil
}
