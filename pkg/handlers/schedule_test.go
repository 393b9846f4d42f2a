package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umbraco-cms/pkg/models"
	"umbraco-cms/pkg/schedule"
	"umbraco-cms/pkg/services"
)

var testMachineKey = []byte("test-machine-key")

type openResponse struct {
	ID   string `json:"id"`
	Form struct {
		Model struct {
			Title               string           `json:"title"`
			Variants            []models.Variant `json:"variants"`
			DisableSubmitButton bool             `json:"disableSubmitButton"`
		} `json:"model"`
		HasPristineVariants bool `json:"hasPristineVariants"`
	} `json:"form"`
	Unschedule map[string]string `json:"unschedule"`
}

func scheduleRouter(t *testing.T) (http.Handler, *ScheduleHandler) {
	t.Helper()
	l, err := services.NewLocalization("", "en-US")
	require.NoError(t, err)
	h := &ScheduleHandler{
		Forms:        schedule.NewRegistry(),
		Localization: l,
		Users:        services.UserService{Localization: l},
		Dates:        services.NewDateHelper(nil),
		MachineKey:   testMachineKey,
	}
	r := newRouter(testUser)
	r.GET("/api/schedule", h.Open)
	r.POST("/api/schedule/:id/date", h.SetDate)
	r.POST("/api/schedule/:id/clear", h.ClearDate)
	r.POST("/api/schedule/:id/select", h.Select)
	r.POST("/api/schedule/:id/submit", h.Submit)
	r.DELETE("/api/schedule/:id", h.Close)
	return r, h
}

func scheduleRepo(t *testing.T, englishDraft bool) string {
	draft := "false"
	if englishDraft {
		draft = "true"
	}
	return setupRepo(t, map[string]string{
		"static/admin/config.yml": testCMSConfig,
		"content/posts/hello.md": "+++\ntitle = 'Hello'\ndraft = " + draft +
			"\npublishDate = '2024-05-01T08:00:00Z'\n+++\nBody\n",
		"content/posts/hello.da.md": "+++\ntitle = 'Hej'\ndraft = true\n+++\nKrop\n",
	})
}

func openForm(t *testing.T, r http.Handler, culture string) openResponse {
	t.Helper()
	w := doJSON(t, r, http.MethodGet, "/api/schedule?path=posts/hello&culture="+culture, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res openResponse
	decode(t, w, &res)
	return res
}

func TestSchedule_Open(t *testing.T) {
	scheduleRepo(t, false)
	r, h := scheduleRouter(t)

	res := openForm(t, r, "da")
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 1, h.Forms.Len())
	assert.Equal(t, "Scheduled Publishing", res.Form.Model.Title)
	assert.True(t, res.Form.HasPristineVariants)

	vs := res.Form.Model.Variants
	require.Len(t, vs, 2)
	assert.Equal(t, "da_", vs[0].CompositeID)
	assert.True(t, vs[0].Active)
	assert.True(t, vs[0].Schedule)
	assert.Equal(t, "en_", vs[1].CompositeID)
	assert.Equal(t, "2024-05-01 08:00", vs[1].ReleaseDateFormatted)

	// only variants with a saved schedule can be unscheduled
	assert.Contains(t, res.Unschedule, "en_")
	assert.NotContains(t, res.Unschedule, "da_")

	w := doJSON(t, r, http.MethodGet, "/api/schedule?path=posts/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSchedule_Flow(t *testing.T) {
	root := scheduleRepo(t, false)
	r, h := scheduleRouter(t)
	res := openForm(t, r, "da")
	base := "/api/schedule/" + res.ID

	w := doJSON(t, r, http.MethodPost, base+"/date", gin.H{"variant": "da_", "date": "2024-06-01 10:00", "kind": "publish"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var form openResponse
	decode(t, w, &form.Form)
	assert.Equal(t, "2024-06-01 10:00", form.Form.Model.Variants[0].ReleaseDateFormatted)

	w = doJSON(t, r, http.MethodPost, base+"/date", gin.H{"variant": "da_", "date": "2024-07-01 10:00", "kind": "unpublish"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, base+"/clear", gin.H{"variant": "da_", "kind": "unpublish"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, base+"/select", gin.H{"variant": "en_", "schedule": false})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &form.Form)
	assert.False(t, form.Form.Model.DisableSubmitButton)

	w = doJSON(t, r, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Scheduled 1 variant(s)")
	assert.Equal(t, 0, h.Forms.Len())

	fm := readFrontMatter(t, root, "posts/hello.da.md")
	assert.Equal(t, "2024-06-01T10:00:00Z", fm[services.ReleaseDateKey])
	assert.NotContains(t, fm, services.RemoveDateKey)
	assert.Equal(t, false, fm[services.DraftKey])
}

func TestSchedule_Errors(t *testing.T) {
	scheduleRepo(t, true)
	r, _ := scheduleRouter(t)
	res := openForm(t, r, "da")
	base := "/api/schedule/" + res.ID

	w := doJSON(t, r, http.MethodPost, base+"/date", gin.H{"variant": "fr_", "date": "2024-06-01 10:00", "kind": "publish"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, r, http.MethodPost, base+"/date", gin.H{"variant": "da_", "date": "2024-06-01 10:00", "kind": "later"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, r, http.MethodPost, base+"/date", gin.H{"date": "2024-06-01 10:00"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/schedule/not-a-uuid/date", gin.H{"variant": "da_"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// english is a mandatory draft and is not selected
	w = doJSON(t, r, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "English is mandatory and must be scheduled")

	w = doJSON(t, r, http.MethodPost, base+"/select", gin.H{"variant": "en_", "schedule": true})
	require.Equal(t, http.StatusOK, w.Code)
	for _, kind := range []string{"publish", "unpublish"} {
		w = doJSON(t, r, http.MethodPost, base+"/date", gin.H{"variant": "en_", "date": "2024-06-01 10:00", "kind": kind})
		require.Equal(t, http.StatusOK, w.Code)
	}
	w = doJSON(t, r, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "The unpublish date of English must be after its publish date")

	w = doJSON(t, r, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSchedule_FormsArePerUser(t *testing.T) {
	scheduleRepo(t, false)
	r, h := scheduleRouter(t)
	res := openForm(t, r, "da")

	other := newRouter(&models.User{Login: "someone-else", TimeZone: "UTC"})
	other.POST("/api/schedule/:id/submit", h.Submit)
	w := doJSON(t, other, http.MethodPost, "/api/schedule/"+res.ID+"/submit", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
