package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"

	"umbraco-cms/pkg/logger"
	"umbraco-cms/pkg/models"
	"umbraco-cms/pkg/udi"
)

var (
	ErrContentNotFound = errors.New("content not found")
	ErrNoFrontMatter   = errors.New("document has no front matter")
)

// ContentStore reads and writes content items in the repo.
type ContentStore struct{}

func (ContentStore) List() ([]models.ContentItem, error) {
	return GetContentCache()
}

// Item returns the item whose path is base, e.g. "posts/hello". A variant
// path such as "posts/hello.da.md" resolves to its item too.
func (s ContentStore) Item(base string) (*models.ContentItem, error) {
	items, err := GetContentCache()
	if err != nil {
		return nil, err
	}
	base = strings.Trim(base, "/")
	for i := range items {
		if items[i].Path == base {
			return cloneItem(items[i]), nil
		}
		for _, v := range items[i].Variants {
			if v.Path == base {
				return cloneItem(items[i]), nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrContentNotFound, base)
}

func (s ContentStore) ItemByID(id int) (*models.ContentItem, error) {
	return s.find(func(it *models.ContentItem) bool { return id != 0 && it.ID == id }, fmt.Sprint(id))
}

func (s ContentStore) ItemByKey(key uuid.UUID) (*models.ContentItem, error) {
	return s.find(func(it *models.ContentItem) bool { return it.Key == key.String() }, key.String())
}

// ItemByUdi resolves document GUID UDIs by key.
func (s ContentStore) ItemByUdi(u udi.Udi) (*models.ContentItem, error) {
	g, ok := u.(udi.GuidUdi)
	if !ok || g.IsRoot() || (g.EntityType() != udi.Document && g.EntityType() != udi.AnyGuid) {
		return nil, fmt.Errorf("%w: %s", ErrContentNotFound, u)
	}
	want := udi.NewGuid(udi.Document, g.Guid())
	return s.find(func(it *models.ContentItem) bool {
		stored, ok := udi.TryParse(it.Udi)
		return ok && udi.Equal(stored, want)
	}, u.String())
}

func (s ContentStore) find(match func(*models.ContentItem) bool, label string) (*models.ContentItem, error) {
	items, err := GetContentCache()
	if err != nil {
		return nil, err
	}
	for i := range items {
		if match(&items[i]) {
			return cloneItem(items[i]), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrContentNotFound, label)
}

// cloneItem copies an item out of the cache so callers can mutate its variants.
func cloneItem(it models.ContentItem) *models.ContentItem {
	it.Variants = append([]models.Variant(nil), it.Variants...)
	return &it
}

// SaveSchedule writes the release and remove dates of a variant into its
// front matter. A variant that has not been created yet gets a new file
// built from its collection's defaults.
func (s ContentStore) SaveSchedule(ctx context.Context, v models.Variant) error {
	doc, err := ReadDocument(v.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		doc, err = newVariantDocument(v)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	}
	if doc.FrontMatter == nil {
		return fmt.Errorf("%s: %w", v.Path, ErrNoFrontMatter)
	}

	setFrontMatterTime(doc.FrontMatter, ReleaseDateKey, v.ReleaseDate)
	setFrontMatterTime(doc.FrontMatter, RemoveDateKey, v.RemoveDate)
	if v.ReleaseDate != nil {
		// hugo skips drafts regardless of publishDate
		doc.FrontMatter[DraftKey] = false
	}

	if err := WriteDocument(doc); err != nil {
		return err
	}
	logger.WithContext(ctx).Info("schedule saved",
		"path", v.Path,
		"culture", v.Language.Culture,
		"release", v.ReleaseDate,
		"remove", v.RemoveDate,
	)
	return nil
}

func newVariantDocument(v models.Variant) (*models.Document, error) {
	overrides := map[string]interface{}{"title": v.Name, DraftKey: true}
	if col := collectionFor(v.Path); col != nil {
		content, err := GenerateContentFromCollection(*col, overrides)
		if err != nil {
			return nil, err
		}
		fm, body, format, err := ParseFrontMatter(content)
		if err != nil {
			return nil, err
		}
		return &models.Document{Path: v.Path, Title: v.Name, FrontMatter: fm, Body: body, Format: format}, nil
	}
	return &models.Document{Path: v.Path, Title: v.Name, FrontMatter: overrides, Format: "toml"}, nil
}

// collectionFor finds the collection whose folder holds the content path.
func collectionFor(rel string) *models.Collection {
	cfg, err := GetCMSConfig()
	if err != nil {
		return nil
	}
	dir := path.Dir("content/" + rel)
	for i := range cfg.Collections {
		folder := strings.Trim(cfg.Collections[i].Folder, "/")
		if folder != "" && (dir == folder || strings.HasPrefix(dir, folder+"/")) {
			return &cfg.Collections[i]
		}
	}
	return nil
}
