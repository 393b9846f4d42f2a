package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"umbraco-cms/pkg/config"
	"umbraco-cms/pkg/logger"
	"umbraco-cms/pkg/models"
)

var ErrNoCurrentUser = errors.New("no current user")

const githubUserURL = "https://api.github.com/user"

type userKey struct{}

// WithUser stores the signed-in user in ctx. The login also goes under
// logger.UserKey so request logs carry it.
func WithUser(ctx context.Context, u *models.User) context.Context {
	ctx = context.WithValue(ctx, userKey{}, u)
	if u != nil {
		ctx = context.WithValue(ctx, logger.UserKey, u.Login)
	}
	return ctx
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey{}).(*models.User)
	return u, ok && u != nil
}

// UserService answers "who is editing" for forms and handlers.
type UserService struct {
	Localization *Localization
}

func (s UserService) GetCurrentUser(ctx context.Context) (*models.User, error) {
	u, ok := UserFromContext(ctx)
	if !ok {
		return nil, ErrNoCurrentUser
	}
	return u, nil
}

// NewUser fills in the locale from the browser's Accept-Language header and
// the time zone from the configured default.
func (s UserService) NewUser(login, name, acceptLanguage, timeZone string) *models.User {
	locale := config.DefaultLocale
	if s.Localization != nil && acceptLanguage != "" {
		locale = s.Localization.MatchAcceptLanguage(acceptLanguage)
	}
	if timeZone == "" {
		timeZone = config.DefaultTimeZone
	}
	if _, err := time.LoadLocation(timeZone); err != nil {
		timeZone = "UTC"
	}
	if name == "" {
		name = login
	}
	return &models.User{Login: login, Name: name, Locale: locale, TimeZone: timeZone}
}

type githubUser struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

// FetchGithubUser reads the profile of the account behind client, which is
// expected to carry the OAuth token.
func FetchGithubUser(ctx context.Context, client *http.Client, url string) (login, name string, err error) {
	if url == "" {
		url = githubUserURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("github user: unexpected status %s", resp.Status)
	}
	var gu githubUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return "", "", fmt.Errorf("github user: %w", err)
	}
	return gu.Login, gu.Name, nil
}
