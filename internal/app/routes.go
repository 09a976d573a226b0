package app

import (
	"time"

	"spotfetch/internal/auth"
	"spotfetch/internal/cache"
	"spotfetch/internal/catalog"
	"spotfetch/internal/config"
	"spotfetch/internal/handlers"
	"spotfetch/internal/pipeline"
	"spotfetch/internal/repo"
	"spotfetch/internal/service"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

const resolverEndpoint = "https://spotify-downloader9.p.rapidapi.com/downloadSong"

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) error {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler())
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	sessionStore := auth.NewStore(rdb, 24*time.Hour)
	userRepo := repo.NewPGUserRepo(db)
	userSvc := service.NewUserService(userRepo)
	authHandler := handlers.NewAuthHandler(sessionStore, userSvc)
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/logout", auth.RequireSession(sessionStore), authHandler.Logout)

	spotify, err := catalog.NewSpotifyClient(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	if err != nil {
		return err
	}
	searchCache := cache.NewSearchCache(rdb, cfg.Redis.SearchTTL.Duration())
	searchSvc := service.NewSearchService(spotify, searchCache)

	resolver := pipeline.NewRapidAPIResolver(
		resolverEndpoint,
		cfg.Resolver.APIKey,
		cfg.Resolver.APIHost,
		cfg.Resolver.Timeout.Duration(),
	)
	fetcher := pipeline.NewHTTPFetcher(cfg.Downloads.FetchTimeout.Duration())
	pipe := pipeline.NewService(resolver, fetcher, cfg.Downloads.Dir, log.Default())

	trackHandler := handlers.NewTrackHandler(searchSvc, pipe)
	// Search and download stay unauthenticated, as in the original product.
	api := r.Group("/api")
	api.GET("/search", trackHandler.Search)
	api.POST("/download", trackHandler.Download)

	return nil
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Track Downloader API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
		})
	}
}

func healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}
