package i18n

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Localizer binds a catalog to the active language.
type Localizer struct {
	mu      sync.RWMutex
	catalog *Catalog
	lang    Language
}

func NewLocalizer(catalog *Catalog, lang Language) *Localizer {
	if !lang.Valid() {
		lang = English
	}
	return &Localizer{catalog: catalog, lang: lang}
}

// SetLanguage switches the active language. Unsupported languages are
// ignored and reported as false.
func (l *Localizer) SetLanguage(lang Language) bool {
	if !lang.Valid() {
		return false
	}
	l.mu.Lock()
	l.lang = lang
	l.mu.Unlock()
	return true
}

func (l *Localizer) Language() Language {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lang
}

func (l *Localizer) T(key string) string {
	return l.catalog.Translate(l.Language(), key, nil)
}

func (l *Localizer) Tf(key string, params map[string]string) string {
	return l.catalog.Translate(l.Language(), key, params)
}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Turkish})

// DetectLanguage picks the stored language when it is supported, otherwise
// the first locale that matches a supported language, otherwise English.
// Locales may be BCP 47 tags or POSIX values such as tr_TR.UTF-8.
func DetectLanguage(stored string, locales ...string) Language {
	if lang := Language(strings.TrimSpace(stored)); lang.Valid() {
		return lang
	}
	supported := Languages()
	for _, raw := range locales {
		tag, err := language.Parse(posixToBCP47(raw))
		if err != nil {
			continue
		}
		_, idx, confidence := matcher.Match(tag)
		if confidence == language.No {
			continue
		}
		return supported[idx]
	}
	return English
}

func posixToBCP47(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, ".@"); i >= 0 {
		raw = raw[:i]
	}
	return strings.ReplaceAll(raw, "_", "-")
}
