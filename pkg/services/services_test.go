package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"umbraco-cms/pkg/config"
)

const testCMSConfig = `media_folder: static/images
public_folder: /images
languages:
  - culture: en
    name: English
    default: true
    mandatory: true
  - culture: da
    name: Dansk
collections:
  - name: posts
    label: Posts
    folder: content/posts
    media_folder: static/posts
    fields:
      - name: title
        widget: string
      - name: tags
        widget: list
      - name: body
        widget: markdown
        default: Write here
`

// setupRepo points the services at a temp repo holding files, keyed by
// repo-relative path.
func setupRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}

	prev := config.RepoPath
	config.RepoPath = root
	InvalidateCache()
	t.Cleanup(func() {
		config.RepoPath = prev
		InvalidateCache()
	})
	return root
}
