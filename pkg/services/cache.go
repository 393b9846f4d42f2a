package services

import (
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"umbraco-cms/pkg/config"
	"umbraco-cms/pkg/helpers"
	"umbraco-cms/pkg/logger"
	"umbraco-cms/pkg/models"
	"umbraco-cms/pkg/udi"
)

var (
	contentCache []models.ContentItem
	cacheMutex   sync.Mutex
	cacheLoaded  bool
)

// contentNamespace seeds the stable keys of items that have no key in their front matter.
var contentNamespace = uuid.MustParse("9c5b6e1c-3f4e-4a0e-8a52-7f3d1c2b9e10")

// GetContentCache lists every content item under <repo>/content, grouping
// per-culture files into variants of one item.
func GetContentCache() ([]models.ContentItem, error) {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	if cacheLoaded {
		return contentCache, nil
	}

	cfg, err := GetCMSConfig()
	if err != nil {
		return nil, err
	}
	defaultLang, _ := cfg.DefaultLanguage()

	contentDir := filepath.Join(config.RepoPath, "content")
	dirtyFiles, err := getGitDirtyFiles(config.RepoPath)
	if err != nil {
		logger.Logger.Debug("git status unavailable", "error", err)
	}

	groups := make(map[string]map[string]string)
	if _, err := os.Stat(contentDir); errors.Is(err, os.ErrNotExist) {
		cacheLoaded = true
		contentCache = nil
		return contentCache, nil
	}
	err = filepath.WalkDir(contentDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		relPath, _ := filepath.Rel(contentDir, p)
		relPath = filepath.ToSlash(relPath)

		base, culture := splitCulture(relPath, cfg.Languages, defaultLang)
		files, ok := groups[base]
		if !ok {
			files = make(map[string]string)
			groups[base] = files
		}
		if _, exists := files[culture]; !exists {
			files[culture] = relPath
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	bases := make([]string, 0, len(groups))
	for base := range groups {
		bases = append(bases, base)
	}
	sort.Strings(bases)

	items := make([]models.ContentItem, 0, len(bases))
	for _, base := range bases {
		items = append(items, buildContentItem(base, groups[base], cfg.Languages, defaultLang, dirtyFiles))
	}

	contentCache = items
	cacheLoaded = true
	return contentCache, nil
}

func buildContentItem(base string, files map[string]string, langs []models.Language, defaultLang models.Language, dirtyFiles map[string]bool) models.ContentItem {
	item := models.ContentItem{Path: base, Title: base}
	var key uuid.UUID

	for _, lang := range langs {
		v := models.Variant{Language: lang, Name: path.Base(base)}
		rel, ok := files[strings.ToLower(lang.Culture)]
		if !ok {
			v.Path = variantPath(base, lang, defaultLang)
			v.State = models.StateNotCreated
			item.Variants = append(item.Variants, v)
			continue
		}
		v.Path = rel

		doc, err := ReadDocument(rel)
		if err != nil {
			logger.Logger.Warn("reading variant failed", "path", rel, "error", err)
			v.State = models.StateDraft
			item.Variants = append(item.Variants, v)
			continue
		}
		v.Name = doc.Title

		dirty := dirtyFiles["content/"+rel]
		draft := frontMatterBool(doc.FrontMatter, DraftKey)
		switch {
		case draft:
			v.State = models.StateDraft
		case dirty:
			v.State = models.StatePublishedPendingChanges
		default:
			v.State = models.StatePublished
		}
		item.IsDirty = item.IsDirty || dirty

		loc := config.ServerLocation()
		if v.ReleaseDate, err = frontMatterTime(doc.FrontMatter, ReleaseDateKey, loc); err != nil {
			logger.Logger.Warn("ignoring release date", "path", rel, "error", err)
		}
		if v.RemoveDate, err = frontMatterTime(doc.FrontMatter, RemoveDateKey, loc); err != nil {
			logger.Logger.Warn("ignoring remove date", "path", rel, "error", err)
		}

		if key == uuid.Nil {
			if k, ok := helpers.ConvertIDToGUID(doc.FrontMatter[KeyKey]); ok {
				key = k
			}
		}
		if item.ID == 0 {
			if id, ok := helpers.ConvertIDToInt(doc.FrontMatter[IDKey]); ok {
				item.ID = id
			}
		}
		if item.Title == base || models.SameCulture(lang.Culture, defaultLang.Culture) {
			item.Title = doc.Title
		}
		item.Variants = append(item.Variants, v)
	}

	if key == uuid.Nil {
		key = uuid.NewSHA1(contentNamespace, []byte(base))
	}
	item.Key = key.String()
	item.Udi = udi.NewGuid(udi.Document, key).String()
	return item
}

// splitCulture maps posts/hello.da.md to ("posts/hello", "da"). Files
// without a known culture suffix belong to the default language.
func splitCulture(rel string, langs []models.Language, defaultLang models.Language) (string, string) {
	base := strings.TrimSuffix(rel, ".md")
	if ext := path.Ext(base); ext != "" {
		for _, l := range langs {
			if models.SameCulture(ext[1:], l.Culture) {
				return strings.TrimSuffix(base, ext), strings.ToLower(l.Culture)
			}
		}
	}
	return base, strings.ToLower(defaultLang.Culture)
}

func variantPath(base string, lang, defaultLang models.Language) string {
	if models.SameCulture(lang.Culture, defaultLang.Culture) {
		return base + ".md"
	}
	return base + "." + strings.ToLower(lang.Culture) + ".md"
}

func getGitDirtyFiles(dir string) (map[string]bool, error) {
	cmd := exec.Command("git", "status", "--porcelain")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	dirty := make(map[string]bool)
	lines := strings.Split(string(out), "\n")
	for _, line := range lines {
		if len(line) < 4 {
			continue
		}
		p := strings.TrimSpace(line[3:])
		if _, after, ok := strings.Cut(p, " -> "); ok {
			p = after
		}
		p = strings.Trim(p, "\"")
		dirty[p] = true
	}
	return dirty, nil
}

func InvalidateCache() {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	cacheLoaded = false
	contentCache = nil
}
