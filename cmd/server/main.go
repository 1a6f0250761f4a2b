package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"star_studio/internal/config"
	"star_studio/internal/handler"
	"star_studio/internal/logging"
	"star_studio/internal/middleware"
	"star_studio/internal/repository"
	"star_studio/internal/service"
	"star_studio/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	envErr := godotenv.Load()

	// --- Configuration ---
	appCfg := config.LoadAppConfig()

	logger, err := logging.New(os.Stdout, appCfg.LogLevel, appCfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	ctx := context.Background()

	if envErr != nil {
		logger.Info(ctx, "No .env file found or error loading, relying on environment variables")
	}
	for _, w := range appCfg.Warnings {
		logger.Warn(ctx, "config value replaced by default", "detail", w)
	}

	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		logger.Error(ctx, "failed to load DB config", "error", err)
		os.Exit(1)
	}

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(ctx, dbCfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// --- Auto Migration ---
	if err := config.AutoMigrate(ctx, dbPool, logger); err != nil {
		logger.Error(ctx, "failed to migrate database", "error", err)
		os.Exit(1)
	}

	// --- Initialize Utilities ---
	hasher := utils.NewBcryptHasher(appCfg.BcryptCost)
	policy := utils.NewPasswordPolicy(appCfg.PasswordMinLength)

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool)
	tokenRepo := repository.NewTokenRepository(dbPool)

	// --- Initialize Services ---
	tokenService := service.NewTokenService(tokenRepo)
	accountService := service.NewAccountService(userRepo, tokenService, hasher, policy, logger)

	// --- Initialize Handlers ---
	accountHandler := handler.NewAccountHandler(accountService, logger)

	// --- Setup Gin Router ---
	if appCfg.GinMode != "" {
		gin.SetMode(appCfg.GinMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	// Simple CORS middleware (allow all for development)
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// --- Initialize Middlewares ---
	tokenAuthMW := middleware.TokenAuthMiddleware(accountService, logger)

	// --- Register Routes ---
	accountHandler.RegisterAccountRoutes(router, tokenAuthMW)

	router.GET("/health", func(c *gin.Context) {
		if err := dbPool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + appCfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(ctx, "server starting", "port", appCfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "server forced to shutdown", "error", err)
	}

	logger.Info(ctx, "server exiting")
}
