package models

import (
	"strings"
	"time"
)

// VariantState mirrors the publishing state of a single variant.
type VariantState string

const (
	StateNotCreated              VariantState = "NotCreated"
	StateDraft                   VariantState = "Draft"
	StatePublished               VariantState = "Published"
	StatePublishedPendingChanges VariantState = "PublishedPendingChanges"
)

type Language struct {
	Culture     string `json:"culture" yaml:"culture"`
	Name        string `json:"name" yaml:"name"`
	IsMandatory bool   `json:"isMandatory" yaml:"mandatory"`
	IsDefault   bool   `json:"isDefault" yaml:"default"`
}

// Variant is a per-language (and optional per-segment) rendition of a content item.
// ReleaseDate and RemoveDate are held in server time.
type Variant struct {
	Name     string       `json:"name"`
	Path     string       `json:"path"` // relative to the content dir
	Language Language     `json:"language"`
	Segment  string       `json:"segment,omitempty"`
	State    VariantState `json:"state"`
	Active   bool         `json:"active"`
	IsDirty  bool         `json:"isDirty"`

	ReleaseDate          *time.Time `json:"releaseDate"`
	RemoveDate           *time.Time `json:"removeDate"`
	ReleaseDateFormatted string     `json:"releaseDateFormatted,omitempty"`
	RemoveDateFormatted  string     `json:"removeDateFormatted,omitempty"`

	Schedule    bool   `json:"schedule"`
	Save        bool   `json:"save"`
	CompositeID string `json:"compositeId,omitempty"`
	HTMLID      string `json:"htmlId,omitempty"`
}

// ContentItem groups the variant files that share a base name, e.g.
// posts/hello.en.md and posts/hello.da.md.
type ContentItem struct {
	ID       int       `json:"id,omitempty"`
	Key      string    `json:"key"`
	Udi      string    `json:"udi"`
	Path     string    `json:"path"`
	Title    string    `json:"title"`
	IsDirty  bool      `json:"is_dirty"`
	Variants []Variant `json:"variants"`
}

// Variant returns the variant for culture, or nil.
func (c *ContentItem) Variant(culture string) *Variant {
	for i := range c.Variants {
		if SameCulture(c.Variants[i].Language.Culture, culture) {
			return &c.Variants[i]
		}
	}
	return nil
}

// SameCulture compares culture codes ignoring case and the _/- separator.
func SameCulture(a, b string) bool {
	return strings.EqualFold(strings.ReplaceAll(a, "_", "-"), strings.ReplaceAll(b, "_", "-"))
}

// Document represents one variant file as read from disk.
type Document struct {
	Path        string                 `json:"path"`
	Title       string                 `json:"title"`
	Content     string                 `json:"content,omitempty"` // raw content when the front matter can't be parsed
	FrontMatter map[string]interface{} `json:"frontmatter,omitempty"`
	Body        string                 `json:"body,omitempty"`
	Format      string                 `json:"format,omitempty"` // yaml, toml, json
}
