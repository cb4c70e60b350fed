// Package locale provides CSV-backed string localization for mods. A table
// holds one row per key with a column per language; lookups fall back to the
// table's default language and resolved strings are memoized in an LRU so
// hot UI strings skip the map walk.
package locale

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gertd/go-pluralize"
	lru "github.com/hashicorp/golang-lru/v2"
)

const lookupCacheSize = 1024

// Table is an immutable localization table. Safe for concurrent use.
type Table struct {
	languages []string
	rows      map[string][]string // key -> values, aligned with languages
	fallback  string
	cache     *lru.Cache[string, string]
	plural    *pluralize.Client
}

// Load parses a CSV localization table. The header row is
// "key,lang1,lang2,..."; every other row maps a key to its translations.
// Empty cells fall back to the fallback language's cell. The fallback
// language must be one of the header languages.
func Load(r io.Reader, fallback string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("locale: reading header: %w", err)
	}
	if len(header) < 2 || header[0] != "key" {
		return nil, fmt.Errorf("locale: header must be key,lang1,...")
	}
	languages := header[1:]
	if !contains(languages, fallback) {
		return nil, fmt.Errorf("locale: fallback language %q not in header", fallback)
	}

	rows := make(map[string][]string)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("locale: reading row: %w", err)
		}
		if len(record) == 0 || record[0] == "" {
			continue
		}
		values := make([]string, len(languages))
		copy(values, record[1:])
		rows[record[0]] = values
	}

	cache, _ := lru.New[string, string](lookupCacheSize)
	return &Table{
		languages: languages,
		rows:      rows,
		fallback:  fallback,
		cache:     cache,
		plural:    pluralize.NewClient(),
	}, nil
}

// Languages lists the table's languages in header order.
func (t *Table) Languages() []string { return t.languages }

// Get resolves key in lang, falling back to the table's default language
// when the translation is missing. Reports false when the key is unknown in
// both.
func (t *Table) Get(key, lang string) (string, bool) {
	cacheKey := key + "\x00" + lang
	if s, ok := t.cache.Get(cacheKey); ok {
		return s, true
	}
	s, ok := t.resolve(key, lang)
	if ok {
		t.cache.Add(cacheKey, s)
	}
	return s, ok
}

// GetN resolves a count-dependent string. An explicit "<key>.plural" row
// wins; otherwise the singular translation is pluralized for n != 1. The
// result has every "{n}" placeholder replaced with the count.
func (t *Table) GetN(key, lang string, n int) (string, bool) {
	cacheKey := key + "\x00" + lang + "\x00" + strconv.Itoa(n)
	if s, ok := t.cache.Get(cacheKey); ok {
		return s, true
	}

	var s string
	var ok bool
	if n != 1 {
		if s, ok = t.resolve(key+".plural", lang); !ok {
			if s, ok = t.resolve(key, lang); ok {
				s = t.plural.Plural(s)
			}
		}
	} else {
		s, ok = t.resolve(key, lang)
	}
	if !ok {
		return "", false
	}

	s = strings.ReplaceAll(s, "{n}", strconv.Itoa(n))
	t.cache.Add(cacheKey, s)
	return s, true
}

func (t *Table) resolve(key, lang string) (string, bool) {
	values, ok := t.rows[key]
	if !ok {
		return "", false
	}
	if i := index(t.languages, lang); i >= 0 && values[i] != "" {
		return values[i], true
	}
	if i := index(t.languages, t.fallback); i >= 0 && values[i] != "" {
		return values[i], true
	}
	return "", false
}

func contains(list []string, s string) bool { return index(list, s) >= 0 }

func index(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
