package handlers

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entityKey = "0d7a6c1e-9b1f-4e55-a2c3-1f2e3d4c5b6a"

func TestGetEntity(t *testing.T) {
	setupRepo(t, map[string]string{
		"static/admin/config.yml": testCMSConfig,
		"content/posts/hello.md":  "---\ntitle: Hello\nid: 42\nkey: " + entityKey + "\n---\n",
		"static/images/logo.png":  "png",
	})
	r := newRouter(testUser)
	r.GET("/api/entity", GetEntity)

	get := func(id string) (int, map[string]interface{}) {
		w := doJSON(t, r, http.MethodGet, "/api/entity?id="+url.QueryEscape(id), nil)
		var res map[string]interface{}
		if w.Code == http.StatusOK {
			decode(t, w, &res)
		}
		return w.Code, res
	}

	for _, id := range []string{
		"42",
		entityKey,
		"{" + entityKey + "}",
		"umb://document/0d7a6c1e9b1f4e55a2c31f2e3d4c5b6a",
	} {
		code, res := get(id)
		require.Equal(t, http.StatusOK, code, id)
		assert.Equal(t, "document", res["type"], id)
		content := res["content"].(map[string]interface{})
		assert.Equal(t, "posts/hello", content["path"], id)
	}

	code, res := get("umb://media-file/static/images/logo.png")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "media-file", res["type"])

	code, _ = get("99")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = get("umb://media-file/static/images/missing.png")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = get("umb://media/0d7a6c1e9b1f4e55a2c31f2e3d4c5b6a")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = get("not an id")
	assert.Equal(t, http.StatusBadRequest, code)
}
