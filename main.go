package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"linkly-be/internal/cache"
	"linkly-be/internal/config"
	"linkly-be/internal/controllers"
	"linkly-be/internal/database"
	"linkly-be/internal/jwt"
	"linkly-be/internal/logger"
	"linkly-be/internal/middleware"
	"linkly-be/internal/repository"
	"linkly-be/internal/service"
	"linkly-be/internal/shortcode"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()
	sugar := zl.Sugar()

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		sugar.Fatalw("failed to run migrations", "error", err)
	}
	sugar.Info("database ready")

	// Initialize Redis cache (optional - continue if Redis is unavailable)
	var linkCache cache.LinkCache
	if cfg.RedisURL != "" {
		linkCache, err = cache.NewRedisLinkCache(cfg.RedisURL)
		if err != nil {
			sugar.Warnw("Redis unavailable, continuing without cache", "error", err)
			linkCache = nil
		} else {
			sugar.Info("connected to Redis cache")
		}
	}

	// Initialize repositories
	linkRepo := repository.NewLinkRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize JWT service
	tokenTTL := time.Duration(cfg.JWTTTLHours) * time.Hour
	jwtService := jwt.NewJWTService(cfg.JWTSecret, tokenTTL)

	// Initialize services
	linkService := service.NewLinkService(linkRepo, linkCache, shortcode.NewGenerator(), cfg.BaseURL, sugar)
	authService := service.NewAuthService(userRepo, jwtService)

	// Initialize controllers
	shortenerController := controllers.NewShortenerController(linkService)
	linkController := controllers.NewLinkController(linkService)
	authController := controllers.NewAuthController(authService, tokenTTL)
	qrcodeController := controllers.NewQRCodeController(linkService)

	// Initialize rate limiters
	generalRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	authRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitAuthRPS), cfg.RateLimitAuthBurst)
	shortenRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitShortenRPS), cfg.RateLimitShortenBurst)
	redirectRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRedirectRPS), cfg.RateLimitRedirectBurst)

	// Create a Gin router
	router := gin.Default()

	// Health check endpoint (no rate limiting)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Public redirect endpoint
	router.GET("/s/:shortCode", redirectRateLimiter.LimitMiddleware(), shortenerController.Redirect)

	// API routes group with general rate limiting
	api := router.Group("/api")
	api.Use(generalRateLimiter.LimitMiddleware())
	{
		// Shortening works for anonymous callers; links are attributed
		// to the caller when a valid token is present
		api.POST("/shorten",
			shortenRateLimiter.LimitMiddleware(),
			middleware.OptionalAuthMiddleware(jwtService),
			shortenerController.Shorten)

		// QR code generation
		api.GET("/qrcode/:shortCode", qrcodeController.GenerateQRCode)

		// Auth routes with stricter rate limiting
		auth := api.Group("/auth")
		auth.Use(authRateLimiter.LimitMiddleware())
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
		}

		// Link management - owner only, requires JWT authentication
		links := api.Group("/links")
		links.Use(middleware.AuthMiddleware(jwtService))
		{
			links.GET("/my-links", linkController.GetMyLinks)
			links.PUT("/:id", linkController.UpdateLink)
			links.DELETE("/:id", linkController.DeleteLink)
		}
	}

	sugar.Infow("server starting", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		sugar.Fatalw("server stopped", "error", err)
	}
}
