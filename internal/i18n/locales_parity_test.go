package i18n

import (
	"io/fs"
	"regexp"
	"sort"
	"testing"
)

var (
	formatVerbPattern = regexp.MustCompile(`%(?:\[[0-9]+\])?[-+# 0]*[0-9]*(?:\.[0-9]+)?[a-zA-Z%]`)
	argIndexPattern   = regexp.MustCompile(`\[[0-9]+\]`)
)

func loadEmbeddedCatalogs(t *testing.T) map[string]Catalog {
	t.Helper()

	locales, err := fs.Sub(embeddedLocales, "locales")
	if err != nil {
		t.Fatalf("open embedded locales: %v", err)
	}
	catalogs, err := LoadCatalogs(locales)
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return catalogs
}

// Every catalog must carry the English keys with the same format verbs, or
// Translatef would render broken copy.
func TestCatalogsMatchEnglish(t *testing.T) {
	catalogs := loadEmbeddedCatalogs(t)
	english := catalogs[LangEN]

	for language, catalog := range catalogs {
		if language == LangEN {
			continue
		}
		for _, key := range sortedKeys(english) {
			value, ok := catalog[key]
			if !ok {
				t.Errorf("%s: missing key %s", language, key)
				continue
			}
			want := sortedVerbs(english[key])
			got := sortedVerbs(value)
			if len(want) != len(got) {
				t.Errorf("%s: key %s uses verbs %v, english uses %v", language, key, got, want)
				continue
			}
			for index := range want {
				if want[index] != got[index] {
					t.Errorf("%s: key %s uses verbs %v, english uses %v", language, key, got, want)
					break
				}
			}
		}
		for key := range catalog {
			if _, ok := english[key]; !ok {
				t.Errorf("%s: key %s is not in the english catalog", language, key)
			}
		}
	}
}

func sortedKeys(catalog Catalog) []string {
	keys := make([]string, 0, len(catalog))
	for key := range catalog {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedVerbs(value string) []string {
	verbs := formatVerbPattern.FindAllString(value, -1)
	for index, verb := range verbs {
		verbs[index] = argIndexPattern.ReplaceAllString(verb, "")
	}
	sort.Strings(verbs)
	return verbs
}
