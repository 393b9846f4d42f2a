package models

type CMSConfig struct {
	MediaFolder  string       `yaml:"media_folder" json:"media_folder"`
	PublicFolder string       `yaml:"public_folder" json:"public_folder"`
	Languages    []Language   `yaml:"languages" json:"languages"`
	Collections  []Collection `yaml:"collections" json:"collections"`
}

type Collection struct {
	Name         string  `yaml:"name" json:"name"`
	Label        string  `yaml:"label" json:"label"`
	Folder       string  `yaml:"folder" json:"folder"`
	Path         string  `yaml:"path" json:"path"`
	Extension    string  `yaml:"extension" json:"extension"`
	MediaFolder  string  `yaml:"media_folder" json:"media_folder,omitempty"`
	PublicFolder string  `yaml:"public_folder" json:"public_folder,omitempty"`
	Fields       []Field `yaml:"fields" json:"fields"`
}

type Field struct {
	Name    string      `yaml:"name" json:"name"`
	Widget  string      `yaml:"widget" json:"widget"`
	Default interface{} `yaml:"default,omitempty" json:"default,omitempty"`
}

// DefaultLanguage returns the language flagged default, falling back to the first one.
func (c *CMSConfig) DefaultLanguage() (Language, bool) {
	for _, l := range c.Languages {
		if l.IsDefault {
			return l, true
		}
	}
	if len(c.Languages) > 0 {
		return c.Languages[0], true
	}
	return Language{}, false
}

// FindCollection looks up a collection by name.
func (c *CMSConfig) FindCollection(name string) *Collection {
	for i := range c.Collections {
		if c.Collections[i].Name == name {
			return &c.Collections[i]
		}
	}
	return nil
}
