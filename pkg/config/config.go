package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

var (
	RepoPath   = "./repo"
	PublicPath = "./repo/public"
	PreviewURL = "/preview/"
	ListenAddr = ":8080"
	LogLevel   = "info"

	// Media folder used when the admin config names none
	StaticMediaDir = ""

	// Git settings
	GitUserEmail = "bot@umbraco-cms.local"
	GitUserName  = "Umbraco CMS Bot"
	GitBranch    = "main"
	GitRemote    = "origin"

	// Back office settings
	MachineKey       []byte
	ServerTimeOffset = 0 // minutes east of UTC
	DefaultLocale    = "en-US"
	DefaultTimeZone  = "UTC"
	LangPath         = "./lang"
)

var OauthConf *oauth2.Config

func Init() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found or error loading it.")
	}

	appURL := getEnv("APP_URL", "http://localhost:8080")
	redirectURL := getEnv("GITHUB_REDIRECT_URL", appURL+"/auth/callback")

	RepoPath = getEnv("REPO_PATH", "./repo")
	PublicPath = getEnv("PUBLIC_PATH", RepoPath+"/public")
	ListenAddr = getEnv("LISTEN_ADDR", ":8080")
	LogLevel = getEnv("LOG_LEVEL", "info")

	StaticMediaDir = getEnv("STATIC_MEDIA_DIR", "")

	GitUserEmail = getEnv("GIT_USER_EMAIL", "bot@umbraco-cms.local")
	GitUserName = getEnv("GIT_USER_NAME", "Umbraco CMS Bot")
	GitBranch = getEnv("GIT_BRANCH", "main")
	GitRemote = getEnv("GIT_REMOTE", "origin")

	MachineKey = []byte(getEnv("MACHINE_KEY", os.Getenv("SESSION_SECRET")))
	DefaultLocale = getEnv("DEFAULT_LOCALE", "en-US")
	DefaultTimeZone = getEnv("DEFAULT_TIMEZONE", "UTC")
	LangPath = getEnv("LANG_PATH", "./lang")

	if v := os.Getenv("SERVER_TIME_OFFSET"); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			ServerTimeOffset = val
		}
	}

	OauthConf = &oauth2.Config{
		ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		Scopes:       []string{"repo", "read:user"},
		Endpoint:     github.Endpoint,
		RedirectURL:  redirectURL,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GetAppURL() string {
	return getEnv("APP_URL", "http://localhost:8080")
}

// ServerLocation is the fixed zone the server stores schedule dates in.
func ServerLocation() *time.Location {
	if ServerTimeOffset == 0 {
		return time.UTC
	}
	return time.FixedZone("server", ServerTimeOffset*60)
}
