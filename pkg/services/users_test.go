package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umbraco-cms/pkg/config"
	"umbraco-cms/pkg/logger"
	"umbraco-cms/pkg/models"
)

func TestUserService_CurrentUser(t *testing.T) {
	svc := UserService{}

	_, err := svc.GetCurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrNoCurrentUser)

	u := &models.User{Login: "kim"}
	ctx := WithUser(context.Background(), u)
	got, err := svc.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Same(t, u, got)
	assert.Equal(t, "kim", ctx.Value(logger.UserKey))
}

func TestUserService_NewUser(t *testing.T) {
	l, err := NewLocalization("", "en-US")
	require.NoError(t, err)
	svc := UserService{Localization: l}

	u := svc.NewUser("kim", "", "da-DK,da;q=0.9", "Europe/Copenhagen")
	assert.Equal(t, "kim", u.Name)
	assert.Equal(t, "da-DK", u.Locale)
	assert.Equal(t, "Europe/Copenhagen", u.Location().String())

	u = svc.NewUser("kim", "Kim", "", "Mars/Olympus")
	assert.Equal(t, config.DefaultLocale, u.Locale)
	assert.Equal(t, "UTC", u.TimeZone)
}

func TestFetchGithubUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"login":"kim","name":"Kim Hansen"}`))
	}))
	defer srv.Close()

	client := &http.Client{Transport: bearer{"token", http.DefaultTransport}}
	login, name, err := FetchGithubUser(context.Background(), client, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "kim", login)
	assert.Equal(t, "Kim Hansen", name)

	_, _, err = FetchGithubUser(context.Background(), http.DefaultClient, srv.URL)
	assert.Error(t, err)
}

type bearer struct {
	token string
	next  http.RoundTripper
}

func (b bearer) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("Authorization", "Bearer "+b.token)
	return b.next.RoundTrip(r)
}
