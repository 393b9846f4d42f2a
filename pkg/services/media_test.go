package services

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umbraco-cms/pkg/udi"
)

func uploadHeader(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestMedia_SaveListDelete(t *testing.T) {
	root := setupRepo(t, map[string]string{
		"static/admin/config.yml": testCMSConfig,
		"static/images/logo.png":  "png",
		"static/images/sub/x.png": "ignored",
	})

	files, err := ListMediaFiles("")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "logo.png", files[0].Name)
	assert.Equal(t, "static/images/logo.png", files[0].RepoPath)
	assert.Equal(t, "/images/logo.png", files[0].Path)
	assert.Equal(t, "umb://media-file/static/images/logo.png", files[0].Udi)

	saved, err := SaveMediaFile(uploadHeader(t, "my photo.jpg", "jpeg"), "posts")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(saved.Name, "my_photo_"))
	assert.Equal(t, "/posts/"+saved.Name, saved.Path)
	assert.EqualValues(t, 4, saved.Size)
	_, err = os.Stat(filepath.Join(root, "static", "posts", saved.Name))
	require.NoError(t, err)

	got, err := MediaByUdi(udi.MustParse(saved.Udi))
	require.NoError(t, err)
	assert.Equal(t, saved.RepoPath, got.RepoPath)

	require.NoError(t, DeleteMediaFile(saved.RepoPath))
	_, err = os.Stat(filepath.Join(root, "static", "posts", saved.Name))
	assert.True(t, os.IsNotExist(err))
}

func TestMedia_Guards(t *testing.T) {
	setupRepo(t, map[string]string{
		"static/admin/config.yml": testCMSConfig,
		"content/about.md":        "---\ntitle: About\n---\n",
	})

	assert.ErrorIs(t, DeleteMediaFile("content/about.md"), ErrInvalidPath)
	assert.ErrorIs(t, DeleteMediaFile("static/images/../../content/about.md"), ErrInvalidPath)

	_, err := MediaByUdi(udi.NewGuid(udi.Media, [16]byte{1}))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMedia_NotConfigured(t *testing.T) {
	setupRepo(t, nil)
	_, err := ListMediaFiles("")
	assert.ErrorIs(t, err, ErrMediaNotConfigured)
}
