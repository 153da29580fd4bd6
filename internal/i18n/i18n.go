// Package i18n holds the email copy catalogs, one flat JSON file per language.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

const (
	LangRU = "ru"
	LangEN = "en"
)

type Catalog map[string]string

type Manager struct {
	defaultLanguage string
	catalogs        map[string]Catalog
	supported       []string
}

// NewDefaultManager loads the catalogs compiled into the binary.
func NewDefaultManager(defaultLanguage string) (*Manager, error) {
	locales, err := fs.Sub(embeddedLocales, "locales")
	if err != nil {
		return nil, fmt.Errorf("open embedded locales: %w", err)
	}
	return NewManager(defaultLanguage, locales)
}

// NewManager loads every *.json catalog in locales. English is the final
// fallback for missing keys and must be present.
func NewManager(defaultLanguage string, locales fs.FS) (*Manager, error) {
	catalogs, err := LoadCatalogs(locales)
	if err != nil {
		return nil, err
	}
	if _, ok := catalogs[LangEN]; !ok {
		return nil, fmt.Errorf("required locale %q missing", LangEN)
	}

	manager := &Manager{catalogs: catalogs}
	for language := range catalogs {
		manager.supported = append(manager.supported, language)
	}
	sort.Strings(manager.supported)

	manager.defaultLanguage = LangEN
	manager.defaultLanguage = manager.NormalizeLanguage(defaultLanguage)
	return manager, nil
}

// LoadCatalogs parses each non-empty JSON catalog keyed by its file name.
func LoadCatalogs(locales fs.FS) (map[string]Catalog, error) {
	entries, err := fs.ReadDir(locales, ".")
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}

	catalogs := make(map[string]Catalog, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}

		language := normalizeLanguageTag(strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
		content, err := fs.ReadFile(locales, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", language, err)
		}
		catalog := Catalog{}
		if err := json.Unmarshal(content, &catalog); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", language, err)
		}
		if len(catalog) == 0 {
			return nil, fmt.Errorf("locale %s is empty", language)
		}
		catalogs[language] = catalog
	}

	if len(catalogs) == 0 {
		return nil, fmt.Errorf("no locales found")
	}
	return catalogs, nil
}

func (manager *Manager) DefaultLanguage() string {
	return manager.defaultLanguage
}

func (manager *Manager) SupportedLanguages() []string {
	result := make([]string, len(manager.supported))
	copy(result, manager.supported)
	return result
}

// NormalizeLanguage maps raw to a loaded language, or the default one.
func (manager *Manager) NormalizeLanguage(raw string) string {
	normalized := normalizeLanguageTag(raw)
	if manager.isSupported(normalized) {
		return normalized
	}
	return manager.defaultLanguage
}

// IsSupported reports whether raw names a loaded locale after normalization.
func (manager *Manager) IsSupported(raw string) bool {
	return manager.isSupported(normalizeLanguageTag(raw))
}

// DetectFromAcceptLanguage picks the supported language with the highest
// q-value; ties keep header order.
func (manager *Manager) DetectFromAcceptLanguage(raw string) string {
	best := ""
	bestWeight := 0.0
	for _, part := range strings.Split(raw, ",") {
		tag, weight := parseAcceptLanguagePart(part)
		if weight <= bestWeight {
			continue
		}
		normalized := normalizeLanguageTag(tag)
		if !manager.isSupported(normalized) {
			continue
		}
		best, bestWeight = normalized, weight
	}
	if best == "" {
		return manager.defaultLanguage
	}
	return best
}

// Translate looks key up in language, then the default language, then
// English. An unknown key is returned as is.
func (manager *Manager) Translate(language string, key string) string {
	for _, candidate := range []string{manager.NormalizeLanguage(language), manager.defaultLanguage, LangEN} {
		if value, ok := manager.catalogs[candidate][key]; ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	return key
}

func (manager *Manager) Translatef(language string, key string, args ...any) string {
	return fmt.Sprintf(manager.Translate(language, key), args...)
}

func (manager *Manager) isSupported(language string) bool {
	if language == "" {
		return false
	}
	_, ok := manager.catalogs[language]
	return ok
}

func parseAcceptLanguagePart(part string) (string, float64) {
	fields := strings.Split(part, ";")
	tag := strings.TrimSpace(fields[0])
	if tag == "" || tag == "*" {
		return "", 0
	}

	weight := 1.0
	for _, parameter := range fields[1:] {
		name, value, found := strings.Cut(strings.TrimSpace(parameter), "=")
		if !found || strings.TrimSpace(name) != "q" {
			continue
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || parsed < 0 || parsed > 1 {
			return "", 0
		}
		weight = parsed
	}
	return tag, weight
}

func normalizeLanguageTag(raw string) string {
	language := strings.ToLower(strings.TrimSpace(raw))
	if language == "" {
		return ""
	}
	language = strings.ReplaceAll(language, "_", "-")
	if separator := strings.Index(language, "-"); separator >= 0 {
		language = language[:separator]
	}
	return language
}
