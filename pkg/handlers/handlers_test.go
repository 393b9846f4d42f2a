package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"umbraco-cms/pkg/config"
	"umbraco-cms/pkg/models"
	"umbraco-cms/pkg/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testCMSConfig = `media_folder: static/images
public_folder: /images
languages:
  - culture: en
    name: English
    default: true
    mandatory: true
  - culture: da
    name: Dansk
`

var testUser = &models.User{Login: "kim", Name: "Kim", Locale: "en-US", TimeZone: "UTC"}

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
	services.InvalidateCache()
	t.Cleanup(func() {
		config.RepoPath = prev
		services.InvalidateCache()
	})
	return root
}

// newRouter returns an engine with sessions and, when u is set, a signed-in user.
func newRouter(u *models.User) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("test", cookie.NewStore([]byte("test-secret"))))
	r.Use(RequestLogger())
	if u != nil {
		r.Use(func(c *gin.Context) {
			c.Request = c.Request.WithContext(services.WithUser(c.Request.Context(), u))
			c.Next()
		})
	}
	return r
}

func jsonBody(t *testing.T, body interface{}) io.Reader {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func doJSON(t *testing.T, r http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		rd = jsonBody(t, body)
	}
	req := httptest.NewRequest(method, target, rd).WithContext(context.Background())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func readFrontMatter(t *testing.T, root, rel string) map[string]interface{} {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(root, "content", filepath.FromSlash(rel)))
	require.NoError(t, err)
	fm, _, _, err := services.ParseFrontMatter(raw)
	require.NoError(t, err)
	return fm
}
