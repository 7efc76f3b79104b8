// Package i18n resolves dot-path keys against per-language string tables.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
)

type Language string

const (
	English Language = "en"
	Turkish Language = "tr"
)

// Languages lists the supported languages. English is the fallback.
func Languages() []Language {
	return []Language{English, Turkish}
}

func (l Language) Valid() bool {
	return l == English || l == Turkish
}

//go:embed locales/*.json
var localeFS embed.FS

var placeholder = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Catalog holds the flattened tables, one map of dot path to string per
// language.
type Catalog struct {
	tables map[Language]map[string]string
	logger *slog.Logger
}

// Load reads locales/<lang>.json from fsys for every supported language.
// Every leaf of a table must be a string.
func Load(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{tables: make(map[Language]map[string]string, 2), logger: slog.Default()}
	for _, lang := range Languages() {
		raw, err := fs.ReadFile(fsys, "locales/"+string(lang)+".json")
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", lang, err)
		}
		var tree map[string]any
		if err := json.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("decode locale %s: %w", lang, err)
		}
		table := make(map[string]string)
		if err := flatten(table, "", tree); err != nil {
			return nil, fmt.Errorf("locale %s: %w", lang, err)
		}
		c.tables[lang] = table
	}
	return c, nil
}

func flatten(out map[string]string, prefix string, node map[string]any) error {
	for key, value := range node {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch v := value.(type) {
		case string:
			out[path] = v
		case map[string]any:
			if err := flatten(out, path, v); err != nil {
				return err
			}
		default:
			return fmt.Errorf("key %s: expected string or object, got %T", path, value)
		}
	}
	return nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from the embedded tables.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(localeFS)
		if err != nil {
			panic(fmt.Sprintf("i18n: embedded tables: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// WithLogger returns a copy of c that reports missing keys to logger.
func (c *Catalog) WithLogger(logger *slog.Logger) *Catalog {
	return &Catalog{tables: c.tables, logger: logger}
}

// Translate looks key up for lang. A missing key is returned unchanged.
// {{name}} placeholders are replaced from params; unknown or empty ones stay
// as is.
func (c *Catalog) Translate(lang Language, key string, params map[string]string) string {
	value, ok := c.tables[lang][key]
	if !ok {
		c.logger.Warn("translation missing", "key", key, "lang", string(lang))
		return key
	}
	if len(params) == 0 || !strings.Contains(value, "{{") {
		return value
	}
	return placeholder.ReplaceAllStringFunc(value, func(match string) string {
		name := match[2 : len(match)-2]
		if v := params[name]; v != "" {
			return v
		}
		return match
	})
}

// Has reports whether lang defines key.
func (c *Catalog) Has(lang Language, key string) bool {
	_, ok := c.tables[lang][key]
	return ok
}

// Keys returns the sorted key set of lang.
func (c *Catalog) Keys(lang Language) []string {
	table := c.tables[lang]
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
