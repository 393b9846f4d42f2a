package services

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"umbraco-cms/pkg/logger"
)

//go:embed lang/*.yml
var defaultDictionaries embed.FS

// Localization serves back office texts keyed "area_key" per culture.
type Localization struct {
	mu       sync.RWMutex
	fallback string
	cultures []string
	texts    map[string]map[string]string
	matcher  language.Matcher
}

// NewLocalization loads the built-in dictionaries, then overlays any
// <culture>.yml found in dir.
func NewLocalization(dir, fallback string) (*Localization, error) {
	l := &Localization{fallback: fallback, texts: make(map[string]map[string]string)}
	if err := l.load(defaultDictionaries, "lang"); err != nil {
		return nil, err
	}
	if dir != "" {
		if _, err := os.Stat(dir); err == nil {
			if err := l.load(os.DirFS(dir), "."); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	l.rebuild()
	return l, nil
}

func (l *Localization) load(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yml" {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		var areas map[string]map[string]string
		if err := yaml.Unmarshal(raw, &areas); err != nil {
			return fmt.Errorf("parsing %s: %w", e.Name(), err)
		}

		culture := canonicalCulture(strings.TrimSuffix(e.Name(), ".yml"))
		dict, ok := l.texts[culture]
		if !ok {
			dict = make(map[string]string)
			l.texts[culture] = dict
		}
		for area, keys := range areas {
			for key, text := range keys {
				dict[area+"_"+key] = text
			}
		}
	}
	return nil
}

func (l *Localization) rebuild() {
	l.fallback = canonicalCulture(l.fallback)
	if _, ok := l.texts[l.fallback]; !ok {
		l.fallback = "en-US"
	}
	l.cultures = []string{l.fallback}
	for c := range l.texts {
		if c != l.fallback {
			l.cultures = append(l.cultures, c)
		}
	}
	// matcher index order must be stable
	sort.Strings(l.cultures[1:])

	tags := make([]language.Tag, len(l.cultures))
	for i, c := range l.cultures {
		tags[i] = language.Make(c)
	}
	l.matcher = language.NewMatcher(tags)
}

// Cultures lists the loaded cultures, fallback first.
func (l *Localization) Cultures() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.cultures...)
}

// Match picks the loaded culture closest to locale.
func (l *Localization) Match(locale string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return l.fallback
	}
	_, idx, conf := l.matcher.Match(tag)
	if conf == language.No {
		return l.fallback
	}
	return l.cultures[idx]
}

// MatchAcceptLanguage picks a culture from an Accept-Language header.
func (l *Localization) MatchAcceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return l.fallback
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, idx, conf := l.matcher.Match(tags...)
	if conf == language.No {
		return l.fallback
	}
	return l.cultures[idx]
}

// LocalizeFor looks key up for culture, falling back to the fallback
// culture and finally to "[key]". Tokens replace %0%, %1% and so on.
func (l *Localization) LocalizeFor(culture, key string, tokens ...string) string {
	culture = l.Match(culture)

	l.mu.RLock()
	text, ok := l.texts[culture][key]
	if !ok {
		text, ok = l.texts[l.fallback][key]
	}
	l.mu.RUnlock()
	if !ok {
		return "[" + key + "]"
	}
	for i, tok := range tokens {
		text = strings.ReplaceAll(text, "%"+strconv.Itoa(i)+"%", tok)
	}
	return text
}

// Localize uses the locale of the user in ctx.
func (l *Localization) Localize(ctx context.Context, key string, tokens ...string) string {
	culture := l.fallback
	if u, ok := UserFromContext(ctx); ok && u.Locale != "" {
		culture = u.Locale
	}
	text := l.LocalizeFor(culture, key, tokens...)
	if text == "["+key+"]" {
		logger.WithContext(ctx).Debug("missing translation", "key", key, "culture", culture)
	}
	return text
}

func canonicalCulture(s string) string {
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return s
	}
	return tag.String()
}
