// Package i18n resolves user-facing strings from the embedded locale catalogs.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultLocale = "en"

//go:embed locales/*.yml
var localesFS embed.FS

var ErrUnknownLocale = errors.New("unknown locale")

// Translator looks up dotted keys ("tasks.create.notice") in one locale, falling back to English.
type Translator struct {
	locale   string
	messages map[string]string
	fallback map[string]string
}

// New builds a translator for locale from the embedded catalogs.
func New(locale string) (*Translator, error) {
	catalogs, err := loadCatalogs(localesFS)
	if err != nil {
		return nil, err
	}

	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale == "" {
		locale = DefaultLocale
	}

	messages, ok := catalogs[locale]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownLocale, locale, strings.Join(available(catalogs), ", "))
	}

	return &Translator{
		locale:   locale,
		messages: messages,
		fallback: catalogs[DefaultLocale],
	}, nil
}

func (t *Translator) Locale() string {
	return t.locale
}

// T returns the message for key with %{name} placeholders replaced by the given name/value pairs.
func (t *Translator) T(key string, args ...string) string {
	msg, ok := t.messages[key]
	if !ok {
		msg, ok = t.fallback[key]
	}

	if !ok {
		return "translation missing: " + t.locale + "." + key
	}

	for i := 0; i+1 < len(args); i += 2 {
		msg = strings.ReplaceAll(msg, "%{"+args[i]+"}", args[i+1])
	}

	return msg
}

func loadCatalogs(fsys fs.FS) (map[string]map[string]string, error) {
	files, err := fs.Glob(fsys, "locales/*.yml")
	if err != nil {
		return nil, fmt.Errorf("failed to list locale files: %w", err)
	}

	catalogs := make(map[string]map[string]string, len(files))

	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}

		var root map[string]any

		err = yaml.Unmarshal(data, &root)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}

		for locale, tree := range root {
			flat := make(map[string]string)
			flatten("", tree, flat)
			catalogs[strings.ToLower(locale)] = flat
		}
	}

	return catalogs, nil
}

func flatten(prefix string, node any, out map[string]string) {
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}

			flatten(key, child, out)
		}
	case nil:
		out[prefix] = ""
	default:
		out[prefix] = fmt.Sprint(v)
	}
}

func available(catalogs map[string]map[string]string) []string {
	names := make([]string, 0, len(catalogs))
	for name := range catalogs {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
