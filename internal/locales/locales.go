// Package locales resolves the text keys produced by the application layer
// into user-facing strings. Translations are embedded so the binary ships
// self-contained.
package locales

import (
	"embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

//go:embed *.json
var translationFiles embed.FS

// DefaultLanguage is the fallback when a language has no translation for a
// key.
const DefaultLanguage = "fa"

var translations map[string]map[string]string

func init() {
	entries, err := translationFiles.ReadDir(".")
	if err != nil {
		panic(fmt.Sprintf("reading embedded translations: %s", err))
	}

	translations = make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		lang := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))

		buf, err := translationFiles.ReadFile(entry.Name())
		if err != nil {
			panic(fmt.Sprintf("reading translation %s: %s", entry.Name(), err))
		}

		table := make(map[string]string)
		if err := json.Unmarshal(buf, &table); err != nil {
			panic(fmt.Sprintf("parsing translation %s: %s", entry.Name(), err))
		}
		translations[lang] = table
	}
}

// Supported reports whether a translation table exists for the language.
func Supported(lang string) bool {
	_, ok := translations[lang]
	return ok
}

// Languages returns the codes of all embedded translations.
func Languages() []string {
	langs := make([]string, 0, len(translations))
	for lang := range translations {
		langs = append(langs, lang)
	}
	return langs
}

// Text returns the raw translation for key, trying the requested language
// first, then the default one. An unknown key is returned as-is so a missing
// translation is visible instead of silent.
func Text(lang, key string) string {
	if table, ok := translations[lang]; ok {
		if text, ok := table[key]; ok {
			return text
		}
	}
	if text, ok := translations[DefaultLanguage][key]; ok {
		return text
	}
	return key
}

// Render resolves key for the language and substitutes every {name}
// placeholder with its value from args.
func Render(lang, key string, args map[string]string) string {
	text := Text(lang, key)
	for name, value := range args {
		text = strings.ReplaceAll(text, "{"+name+"}", value)
	}
	return text
}
