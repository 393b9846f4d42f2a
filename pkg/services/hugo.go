package services

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"umbraco-cms/pkg/config"
	"umbraco-cms/pkg/models"
)

// BuildSite renders the preview. Drafts are included but hugo still
// honours publishDate and expiryDate, so the preview reflects schedules.
func BuildSite(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "hugo",
		"--source", config.RepoPath,
		"--destination", "public",
		"--baseURL", config.GetAppURL()+config.PreviewURL,
		"--cleanDestinationDir",
		"-D",
	)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// CreateContent runs `hugo new` for a path relative to the content dir.
func CreateContent(ctx context.Context, path string) (string, error) {
	fullPath, err := contentPath(path)
	if err != nil {
		return "Invalid path", err
	}
	if _, err := os.Stat(fullPath); err == nil {
		return "File already exists", os.ErrExist
	}

	cmd := exec.CommandContext(ctx, "hugo", "new", "content", path)
	cmd.Dir = config.RepoPath
	output, err := cmd.CombinedOutput()

	if err == nil {
		InvalidateCache()
	}
	return string(output), err
}

// CreateVariant creates the file of a variant that is still NotCreated.
func CreateVariant(ctx context.Context, item *models.ContentItem, culture string) (string, error) {
	v := item.Variant(culture)
	if v == nil {
		return "Unknown language", fmt.Errorf("%w: %s has no %s variant", ErrContentNotFound, item.Path, culture)
	}
	if v.State != models.StateNotCreated {
		return "Variant already exists", os.ErrExist
	}
	return CreateContent(ctx, v.Path)
}
