package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInit_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("REPO_PATH", "")
	t.Setenv("PUBLIC_PATH", "")
	t.Setenv("SERVER_TIME_OFFSET", "")
	t.Setenv("MACHINE_KEY", "")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("DEFAULT_LOCALE", "")
	t.Setenv("APP_URL", "")
	t.Setenv("GITHUB_REDIRECT_URL", "")
	ServerTimeOffset = 0

	Init()

	assert.Equal(t, "./repo", RepoPath)
	assert.Equal(t, "./repo/public", PublicPath)
	assert.Equal(t, "en-US", DefaultLocale)
	assert.Equal(t, []byte("secret"), MachineKey)
	assert.Equal(t, 0, ServerTimeOffset)
	assert.Equal(t, time.UTC, ServerLocation())
	assert.Equal(t, "http://localhost:8080/auth/callback", OauthConf.RedirectURL)
}

func TestInit_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("REPO_PATH", "/srv/site")
	t.Setenv("SERVER_TIME_OFFSET", "120")
	t.Setenv("MACHINE_KEY", "machine")
	t.Setenv("DEFAULT_LOCALE", "da-DK")
	t.Setenv("APP_URL", "https://cms.example.com")
	t.Setenv("GITHUB_REDIRECT_URL", "")
	t.Setenv("PUBLIC_PATH", "")
	t.Cleanup(func() { ServerTimeOffset = 0 })

	Init()

	assert.Equal(t, "/srv/site", RepoPath)
	assert.Equal(t, "/srv/site/public", PublicPath)
	assert.Equal(t, 120, ServerTimeOffset)
	assert.Equal(t, []byte("machine"), MachineKey)
	assert.Equal(t, "da-DK", DefaultLocale)
	assert.Equal(t, "https://cms.example.com/auth/callback", OauthConf.RedirectURL)

	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, ServerLocation()).Zone()
	assert.Equal(t, 7200, offset)
}
