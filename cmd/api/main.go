package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"expirytrack-api/internal/cache"
	"expirytrack-api/internal/config"
	"expirytrack-api/internal/expiry"
	"expirytrack-api/internal/handler"
	"expirytrack-api/internal/listview"
	"expirytrack-api/internal/repository"
	"expirytrack-api/internal/router"
	"expirytrack-api/internal/service"
	"expirytrack-api/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting ExpiryTrack API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Open the item store in the background. Requests arriving before
	// the open settles are queued by the store and replayed in order.
	st := store.New()
	st.Open(func() (repository.ItemRepository, error) {
		switch cfg.StoreDB.Type {
		case "postgres", "postgresql":
			return repository.NewPostgresItemRepository(cfg.StoreDB.PostgresDSN())
		case "mysql":
			return repository.NewMySQLItemRepository(cfg.StoreDB.MySQLDSN())
		default: // sqlite
			return repository.NewSQLiteItemRepository(cfg.StoreDB.Path)
		}
	})
	defer st.Close()

	// Initialize the dashboard cache
	var dashCache cache.Cache
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Printf("Warning: Redis connection failed, falling back to memory cache: %v", err)
		} else {
			dashCache = redisCache
			log.Println("Redis cache initialized")
		}
	}
	if dashCache == nil {
		dashCache = cache.NewMemoryCache()
		log.Println("Memory cache initialized")
	}
	defer dashCache.Close()

	// Initialize services
	classifier := expiry.NewClassifier(cfg.Expiry.HorizonMonths)

	dashboard := service.NewDashboard(st, classifier, dashCache, cfg.Cache.TTL)
	inventory := service.NewInventoryService(st)
	inventory.SetDashboard(dashboard)

	list := listview.New(inventory, classifier, listview.Config{
		RowHeight:   cfg.List.RowHeight,
		VisibleRows: cfg.List.VisibleRows,
	})

	refresher := service.NewRefresher(dashboard, service.RefreshConfig{
		Interval: cfg.Refresh.DashboardInterval,
	})
	refresher.Start()

	// Initialize handlers
	healthHandler := handler.New(st, cfg.StoreDB.Type, cfg.App.Version)
	itemHandler := handler.NewItemHandler(inventory, list)
	spreadsheetHandler := handler.NewSpreadsheetHandler(inventory, list)
	dashboardHandler := handler.NewDashboardHandler(dashboard)

	// Create router
	r := router.New(router.Config{
		Handler:            healthHandler,
		ItemHandler:        itemHandler,
		SpreadsheetHandler: spreadsheetHandler,
		DashboardHandler:   dashboardHandler,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	refresher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
