package main

import (
	"log"
	"net/http"
	"strings"
	"time"
	"videoserver/auth"
	"videoserver/config"
	"videoserver/db"
	"videoserver/handlers"
	"videoserver/models"
	"videoserver/pipeline"
	"videoserver/realtime"
	"videoserver/storage"
	"videoserver/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
)

func main() {
	db.Init()
	models.Init()
	storage.Init()

	hub := realtime.NewHub()
	pipe := pipeline.New(
		storage.Get(),
		hub,
		pipeline.NewKeywordSizePolicy(),
		config.PIPELINE_WORKERS,
		time.Duration(config.PHASE_SECONDS*float64(time.Second)),
	)
	handlers.Init(hub, pipe, storage.Get())

	if !config.DEBUG_MODE {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	if config.DEBUG_MODE {
		router.Use(utils.ErrorLogMiddleware)
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "PUT", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Range"},
		ExposeHeaders:    []string{"Content-Length", "Content-Range", "Accept-Ranges"},
		AllowCredentials: true,
		MaxAge:           30 * 24 * time.Hour,
	}))
	if !config.DEBUG_MODE {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`/videos/\d+/stream`})))
	}
	router.Use((&utils.CacheRouter{CacheTime: utils.CacheNoCache}).Handler()) // No cache by default

	// Custom Auth Router
	authRouter := &auth.Router{Base: router}
	// Auth handlers
	router.POST("/auth/register", handlers.UserRegister)
	router.POST("/auth/login", handlers.UserLogin)
	// Video handlers
	authRouter.POST("/videos/upload", handlers.VideoUpload, models.RoleEditor, models.RoleAdmin)
	authRouter.GET("/videos", handlers.VideoList)
	authRouter.GET("/videos/mine", handlers.VideoListMine, models.RoleEditor, models.RoleAdmin)
	authRouter.PUT("/videos/:id", handlers.VideoUpdate, models.RoleEditor, models.RoleAdmin)
	authRouter.PUT("/videos/:id/flag", handlers.VideoFlag, models.RoleEditor, models.RoleAdmin)
	authRouter.PUT("/videos/:id/unflag", handlers.VideoUnflag, models.RoleEditor, models.RoleAdmin)
	authRouter.DELETE("/videos/:id", handlers.VideoDelete, models.RoleEditor, models.RoleAdmin)
	authRouter.GET("/videos/:id/stream", handlers.VideoStream) // Fine-grained checks are done inside the handler
	// Real-time channel
	authRouter.GET("/ws", handlers.WebSocket)
	// Misc
	router.GET("/health", (&utils.CacheRouter{CacheTime: 60}).Handler(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	var err error
	if config.TLS_DOMAINS != "" {
		err = autotls.Run(router, strings.Split(config.TLS_DOMAINS, ",")...)
	} else {
		err = router.Run(config.BIND_ADDRESS)
	}
	log.Fatalf("Server stopped: %v", err)
}
