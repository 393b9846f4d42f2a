package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"umbraco-cms/pkg/config"
	"umbraco-cms/pkg/handlers"
	"umbraco-cms/pkg/logger"
	"umbraco-cms/pkg/schedule"
	"umbraco-cms/pkg/services"
)

// Open schedule forms are dropped after this long.
const formTTL = 2 * time.Hour

func main() {
	config.Init()
	log := logger.InitLogger(config.LogLevel)

	localization, err := services.NewLocalization(config.LangPath, config.DefaultLocale)
	if err != nil {
		log.Error("loading dictionaries failed", "error", err)
		os.Exit(1)
	}
	if len(config.MachineKey) == 0 {
		log.Warn("MACHINE_KEY is not set; unschedule links are disabled")
	}

	users := services.UserService{Localization: localization}
	forms := schedule.NewRegistry()
	go sweepForms(forms, log)

	scheduleHandler := &handlers.ScheduleHandler{
		Forms:        forms,
		Localization: localization,
		Users:        users,
		Dates:        services.NewDateHelper(config.ServerLocation()),
		MachineKey:   config.MachineKey,
	}
	surfaceHandler := &handlers.SurfaceHandler{
		MachineKey:   config.MachineKey,
		Localization: localization,
	}

	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestLogger())

	store := cookie.NewStore([]byte(os.Getenv("SESSION_SECRET")))
	r.Use(sessions.Sessions("umbraco_session", store))

	r.LoadHTMLGlob("templates/*")
	r.Static(config.PreviewURL, config.PublicPath)
	r.Static("/static", "./static")

	r.GET("/login", handlers.LoginPage)
	r.GET("/login/github", handlers.GithubLogin)
	r.GET("/auth/callback", handlers.AuthCallback(users))
	r.GET("/logout", handlers.Logout)

	authorized := r.Group("/")
	authorized.Use(handlers.AuthRequired)
	{
		authorized.GET("/", func(c *gin.Context) { c.HTML(http.StatusOK, "index.html", nil) })
		authorized.POST("/surface", surfaceHandler.Post)

		api := authorized.Group("/api")
		{
			api.GET("/me", handlers.Me(users))
			api.POST("/me", handlers.UpdateMe(users))

			api.POST("/build", handlers.HandleBuild)
			api.POST("/sync", handlers.HandleSync)
			api.POST("/publish", handlers.HandlePublish)

			api.GET("/content", handlers.ListContent)
			api.GET("/content/item", handlers.GetDocument)
			api.POST("/content/item", handlers.SaveDocument)
			api.POST("/content/create", handlers.CreateContent)
			api.GET("/content/excerpt", handlers.GetExcerpt)
			api.POST("/diff", handlers.GetDiff)
			api.GET("/config", handlers.GetConfig)
			api.GET("/languages", handlers.GetLanguages)
			api.GET("/entity", handlers.GetEntity)

			api.GET("/schedule", scheduleHandler.Open)
			api.POST("/schedule/:id/date", scheduleHandler.SetDate)
			api.POST("/schedule/:id/clear", scheduleHandler.ClearDate)
			api.POST("/schedule/:id/select", scheduleHandler.Select)
			api.POST("/schedule/:id/submit", scheduleHandler.Submit)
			api.DELETE("/schedule/:id", scheduleHandler.Close)

			api.GET("/media", handlers.ListMedia)
			api.POST("/media", handlers.UploadMedia)
			api.DELETE("/media", handlers.DeleteMedia)
			api.GET("/media/raw", handlers.ServeMediaRaw)
		}
	}

	log.Info("listening", "addr", config.ListenAddr, "repo", config.RepoPath)
	if err := r.Run(config.ListenAddr); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func sweepForms(forms *schedule.Registry, log *slog.Logger) {
	ticker := time.NewTicker(formTTL / 4)
	defer ticker.Stop()
	for range ticker.C {
		if n := forms.Sweep(formTTL); n > 0 {
			log.Debug("dropped stale schedule forms", "count", n, "open", forms.Len())
		}
	}
}
