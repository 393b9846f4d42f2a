package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umbraco-cms/pkg/helpers"
	"umbraco-cms/pkg/services"
)

func postSurface(t *testing.T, r http.Handler, ufprt string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{ufprtField: {ufprt}}
	req := httptest.NewRequest(http.MethodPost, "/surface", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func surfaceRouter(t *testing.T) http.Handler {
	l, err := services.NewLocalization("", "en-US")
	require.NoError(t, err)
	h := &SurfaceHandler{MachineKey: testMachineKey, Localization: l}
	r := newRouter(testUser)
	r.POST("/surface", h.Post)
	return r
}

func TestSurface_Unschedule(t *testing.T) {
	root := scheduleRepo(t, false)
	r := surfaceRouter(t)

	token, err := helpers.CreateEncryptedRouteString(testMachineKey, SurfaceController, UnscheduleAction, "",
		map[string]interface{}{"path": "posts/hello.md"})
	require.NoError(t, err)

	w := postSurface(t, r, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Schedule removed from English")

	fm := readFrontMatter(t, root, "posts/hello.md")
	assert.NotContains(t, fm, services.ReleaseDateKey)
}

func TestSurface_Rejects(t *testing.T) {
	scheduleRepo(t, false)
	r := surfaceRouter(t)

	w := postSurface(t, r, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	forged, err := helpers.CreateEncryptedRouteString([]byte("other-key"), SurfaceController, UnscheduleAction, "",
		map[string]interface{}{"path": "posts/hello.md"})
	require.NoError(t, err)
	w = postSurface(t, r, forged)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	unknown, err := helpers.CreateEncryptedRouteString(testMachineKey, "Other", "Do", "", nil)
	require.NoError(t, err)
	w = postSurface(t, r, unknown)
	assert.Equal(t, http.StatusNotFound, w.Code)

	missing, err := helpers.CreateEncryptedRouteString(testMachineKey, SurfaceController, UnscheduleAction, "",
		map[string]interface{}{"path": "posts/missing.md"})
	require.NoError(t, err)
	w = postSurface(t, r, missing)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSchedule_UnscheduleTokenRoundTrip(t *testing.T) {
	scheduleRepo(t, false)
	r, _ := scheduleRouter(t)
	res := openForm(t, r, "en")

	token := res.Unschedule["en_"]
	require.NotEmpty(t, token)
	rv, err := helpers.DecryptRouteString(testMachineKey, token)
	require.NoError(t, err)
	assert.Equal(t, SurfaceController, rv.Controller)
	assert.Equal(t, UnscheduleAction, rv.Action)
	assert.Equal(t, "posts/hello.md", rv.Values["path"])
}
