package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"juaconnect-server/config"
	"juaconnect-server/database"
	"juaconnect-server/events"
	"juaconnect-server/jobs"
	"juaconnect-server/middleware"
	"juaconnect-server/routes"
	"juaconnect-server/services"
	"juaconnect-server/store"
	ws "juaconnect-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	if cfg.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	var db *gorm.DB
	if cfg.Store.Driver == "postgres" || cfg.Bus.Driver == "postgres" {
		var err error
		if db, err = database.Open(cfg.Database, cfg.Server.GinMode); err != nil {
			log.Fatal("Failed to initialize database:", err)
		}
		defer database.Close(db)
	}

	st, closeStore, err := openStore(cfg, db)
	if err != nil {
		log.Fatal("Failed to open store:", err)
	}
	defer closeStore()

	bus, closeBus, err := openBus(cfg, db)
	if err != nil {
		log.Fatal("Failed to start change bus:", err)
	}
	defer closeBus()

	ctx := context.Background()
	marketplace, err := services.NewMarketplace(ctx, st, bus,
		services.WithNotifyOnStart(cfg.Notification.NotifyOnStart),
		services.WithLanguage(cfg.Notification.Language),
	)
	if err != nil {
		log.Fatal("Failed to load marketplace state:", err)
	}
	defer marketplace.Close()

	if cfg.Directory.Seed {
		if _, err := marketplace.Directory.Seed(ctx, sampleArtisans()); err != nil {
			log.Printf("⚠️  Failed to seed artisan directory: %v", err)
		}
	}

	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()
	stopRelay := hub.Relay(bus, events.TopicDataUpdate)
	defer stopRelay()

	refreshJob := jobs.NewRefreshJob(marketplace, cfg.Bus.RefreshInterval)
	refreshJob.Start()
	defer refreshJob.Stop()

	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimitPerMinute)
	go cleanupLimiters(rateLimiter)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.InputValidationMiddleware())
	router.Use(middleware.RateLimitMiddleware(rateLimiter))
	router.Use(middleware.AuditLogMiddleware())

	routes.RegisterRoutes(router, &routes.Handler{
		Marketplace: marketplace,
		Hub:         hub,
		Upgrader:    ws.NewUpgrader(cfg.Server.AllowedOrigins),
	})

	runServer(router, cfg.Server.Port)

	if err := marketplace.Flush(context.Background()); err != nil {
		log.Printf("❌ Final flush failed: %v", err)
	}
}

// openStore picks the persistence backend named by STORE_DRIVER
func openStore(cfg *config.Config, db *gorm.DB) (store.Store, func(), error) {
	switch cfg.Store.Driver {
	case "memory":
		log.Println("⚠️  Using in-memory store; state is lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("💾 Using SQLite store at %s", cfg.Store.SQLitePath)
		return s, func() { s.Close() }, nil
	case "postgres":
		s, err := store.NewGormStore(db)
		if err != nil {
			return nil, nil, err
		}
		log.Println("💾 Using Postgres store")
		return s, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
}

// openBus picks the change bus named by BUS_DRIVER
func openBus(cfg *config.Config, db *gorm.DB) (events.Bus, func(), error) {
	switch cfg.Bus.Driver {
	case "local":
		return events.NewLocalBus(), func() {}, nil
	case "postgres":
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		b, err := events.NewPostgresBus(sqlDB, cfg.Database.URL, cfg.Bus.Channel)
		if err != nil {
			return nil, nil, err
		}
		return b, func() { b.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown BUS_DRIVER %q", cfg.Bus.Driver)
}

func cleanupLimiters(rl *middleware.RateLimiter) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		rl.Cleanup(time.Hour)
	}
}

// runServer serves until SIGINT or SIGTERM, then shuts down gracefully
func runServer(router *gin.Engine, port string) {
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("🚀 JuaConnect server running on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server exited properly")
}
