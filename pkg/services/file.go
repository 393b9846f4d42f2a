package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"umbraco-cms/pkg/config"
	"umbraco-cms/pkg/models"
)

var ErrInvalidPath = errors.New("invalid path")

const cmsConfigPath = "static/admin/config.yml"

func SafeJoin(root, sub, target string) string {
	cleanTarget := filepath.Clean(filepath.FromSlash(target))
	if filepath.IsAbs(cleanTarget) || strings.Contains(cleanTarget, "..") {
		return ""
	}
	return filepath.Join(root, sub, cleanTarget)
}

func contentPath(rel string) (string, error) {
	full := SafeJoin(config.RepoPath, "content", rel)
	if full == "" || rel == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, rel)
	}
	return full, nil
}

// GetConfig returns the raw admin config for the editor UI.
func GetConfig() (map[string]interface{}, error) {
	content, err := os.ReadFile(filepath.Join(config.RepoPath, cmsConfigPath))
	if err != nil {
		return nil, err
	}

	var cfg map[string]interface{}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetCMSConfig reads the admin config. A missing file yields an empty
// config; the language list always holds at least the default locale.
func GetCMSConfig() (*models.CMSConfig, error) {
	cfg := &models.CMSConfig{}
	content, err := os.ReadFile(filepath.Join(config.RepoPath, cmsConfigPath))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", cmsConfigPath, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	if len(cfg.Languages) == 0 {
		cfg.Languages = []models.Language{{
			Culture:     config.DefaultLocale,
			Name:        config.DefaultLocale,
			IsMandatory: true,
			IsDefault:   true,
		}}
	}
	return cfg, nil
}

// ReadDocument loads a variant file relative to the content dir.
func ReadDocument(rel string) (*models.Document, error) {
	fullPath, err := contentPath(rel)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, err
	}

	fm, body, format, err := ParseFrontMatter(content)
	if err != nil {
		return &models.Document{Path: rel, Title: rel, Content: string(content)}, nil
	}
	title := frontMatterString(fm, "title")
	if title == "" {
		title = rel
	}
	return &models.Document{
		Path:        rel,
		Title:       title,
		FrontMatter: fm,
		Body:        body,
		Format:      format,
	}, nil
}

// WriteDocument serializes doc back to disk and drops the content cache.
func WriteDocument(doc *models.Document) error {
	fullPath, err := contentPath(doc.Path)
	if err != nil {
		return err
	}

	var finalContent []byte
	if doc.FrontMatter != nil {
		format := doc.Format
		if format == "" {
			format = "toml"
		}
		finalContent, err = ConstructFileContent(doc.FrontMatter, doc.Body, format)
		if err != nil {
			return fmt.Errorf("constructing %s: %w", doc.Path, err)
		}
	} else {
		finalContent = []byte(doc.Content)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(fullPath, finalContent, 0644); err != nil {
		return err
	}
	InvalidateCache()
	return nil
}
