package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"umbraco-cms/pkg/config"
	"umbraco-cms/pkg/models"
	"umbraco-cms/pkg/services"
)

const (
	sessionTokenKey = "access_token"
	sessionUserKey  = "user"
	sessionStateKey = "oauth_state"
)

// AuthRequired rejects anonymous requests and puts the session user into
// the request context.
func AuthRequired(c *gin.Context) {
	session := sessions.Default(c)
	token := session.Get(sessionTokenKey)
	if token == nil {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		} else {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
		}
		return
	}

	if raw, ok := session.Get(sessionUserKey).(string); ok {
		var u models.User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			c.Request = c.Request.WithContext(services.WithUser(c.Request.Context(), &u))
		}
	}
	c.Next()
}

// SetSessionUser stores token and user in the session.
func SetSessionUser(c *gin.Context, token string, u *models.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	session := sessions.Default(c)
	session.Set(sessionTokenKey, token)
	session.Set(sessionUserKey, string(raw))
	return session.Save()
}

func accessToken(c *gin.Context) string {
	token, _ := sessions.Default(c).Get(sessionTokenKey).(string)
	return token
}

func currentLogin(c *gin.Context) string {
	if u, ok := services.UserFromContext(c.Request.Context()); ok {
		return u.Login
	}
	return ""
}

func LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", nil)
}

func GithubLogin(c *gin.Context) {
	state := uuid.NewString()
	session := sessions.Default(c)
	session.Set(sessionStateKey, state)
	_ = session.Save()

	url := config.OauthConf.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// AuthCallback exchanges the code, looks the GitHub user up and signs them in.
func AuthCallback(users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if want, _ := session.Get(sessionStateKey).(string); want == "" || want != c.Query("state") {
			c.String(http.StatusBadRequest, "OAuth state mismatch")
			return
		}
		session.Delete(sessionStateKey)

		ctx := c.Request.Context()
		token, err := config.OauthConf.Exchange(ctx, c.Query("code"))
		if err != nil {
			_ = c.Error(err)
			c.String(http.StatusInternalServerError, "OAuth Exchange Failed")
			return
		}

		login, name, err := services.FetchGithubUser(ctx, config.OauthConf.Client(ctx, token), "")
		if err != nil {
			_ = c.Error(err)
			c.String(http.StatusInternalServerError, "Failed to read GitHub user")
			return
		}

		u := users.NewUser(login, name, c.GetHeader("Accept-Language"), "")
		if err := SetSessionUser(c, token.AccessToken, u); err != nil {
			_ = c.Error(err)
			c.String(http.StatusInternalServerError, "Failed to save session")
			return
		}
		c.Redirect(http.StatusFound, "/")
	}
}

// Me returns the signed-in user.
func Me(users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := users.GetCurrentUser(c.Request.Context())
		if err != nil {
			respondError(c, err, "No user")
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// UpdateMe changes the locale or time zone of the signed-in user.
func UpdateMe(users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := users.GetCurrentUser(c.Request.Context())
		if err != nil {
			respondError(c, err, "No user")
			return
		}
		var req struct {
			Locale   string `json:"locale"`
			TimeZone string `json:"timeZone"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
			return
		}
		updated := users.NewUser(u.Login, u.Name, req.Locale, req.TimeZone)
		if req.Locale == "" {
			updated.Locale = u.Locale
		}
		if req.TimeZone == "" {
			updated.TimeZone = u.TimeZone
		}
		if err := SetSessionUser(c, accessToken(c), updated); err != nil {
			respondError(c, err, "Failed to save session")
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/login")
}
