package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/onursal82-hash/Vortexbot/internal/config"
	"github.com/onursal82-hash/Vortexbot/internal/handler"
	"github.com/onursal82-hash/Vortexbot/internal/ledger"
	"github.com/onursal82-hash/Vortexbot/internal/market"
	"github.com/onursal82-hash/Vortexbot/internal/middleware"
	"github.com/onursal82-hash/Vortexbot/internal/service"
	"github.com/onursal82-hash/Vortexbot/internal/storage"
	"github.com/onursal82-hash/Vortexbot/pkg/jwt"
	"github.com/onursal82-hash/Vortexbot/pkg/logger"
	"github.com/onursal82-hash/Vortexbot/pkg/okx"
)

func main() {
	// Load .env file (ignore error in production)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log := logger.GetLogger()

	log.Info("Starting Vortexbot...")
	log.Infof("Environment: %s", cfg.Server.Env)

	// Restore the ledger from disk
	led := ledger.New(cfg.Workspace.InitialBalance, cfg.Workspace.SharedWorkspaceID())
	store := storage.NewStore(cfg.Storage.DataFile, cfg.Storage.BackupFile)

	doc, err := store.Load(cfg.Workspace.SharedID)
	if err != nil {
		log.Fatal("Failed to load ledger", err)
	}
	led.Restore(doc)
	if cfg.Workspace.Shared {
		led.EnsureWorkspace(cfg.Workspace.SharedID)
	}

	history := storage.NewHistoryLog(cfg.Storage.HistoryFile)

	// Initialize market provider
	var provider market.Provider
	switch cfg.Market.Provider {
	case "binance":
		provider = market.NewBinanceProvider()
		log.Info("Market provider: Binance")
	default:
		provider = market.NewOKXProvider(okx.NewClient(cfg.Market.OKXAPIURL, 10*time.Second))
		log.Info("Market provider: OKX")
	}

	// Initialize JWT manager
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire)

	// Initialize services
	hub := service.NewStreamHub()
	go hub.Run()

	authService := service.NewAuthService(led, jwtManager, cfg.Workspace.AuthBypass)
	strategyService := service.NewStrategyService(led, provider, store, history)
	syncService := service.NewSyncService(led, provider, store, history, hub, cfg.Engine, cfg.Market.Watchlist)
	syncService.Start()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	strategyHandler := handler.NewStrategyHandler(strategyService)
	dashboardHandler := handler.NewDashboardHandler(strategyService, led)

	// Set Gin mode
	if !cfg.Server.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Apply middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", dashboardHandler.Health)

	api := router.Group("/api/v1")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Authenticated routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(jwtManager))
		{
			protected.GET("/dashboard", dashboardHandler.Dashboard)
			protected.GET("/symbols", strategyHandler.ListMarkets)
			protected.GET("/history", strategyHandler.TradeHistory)

			bots := protected.Group("/bots")
			{
				bots.POST("", strategyHandler.CreateBot)
				bots.GET("/:symbol", strategyHandler.GetBot)
				bots.POST("/:symbol/stop", strategyHandler.StopBot)
				bots.POST("/:symbol/panic", strategyHandler.PanicSell)
			}

			protected.POST("/strategies", strategyHandler.OpenStrategy)
		}
	}

	// WebSocket tick stream
	router.GET("/stream", hub.ServeWS)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Infof("Server starting on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", err)
		}
	}()

	log.Info("✓ Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Stop background jobs first so the final save sees a quiet ledger
	syncService.Stop()

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", err)
	}

	log.Info("Server exited")
}
