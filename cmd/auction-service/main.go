package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-house/internal/api/handlers"
	"auction-house/internal/clock"
	"auction-house/internal/config"
	"auction-house/internal/domain"
	"auction-house/internal/infrastructure/mysql"
	redisinfra "auction-house/internal/infrastructure/redis"
	ws "auction-house/internal/infrastructure/websocket"
	"auction-house/internal/services"
	"auction-house/pkg/logger"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	log := logger.New()
	log.Info("Starting auction service")

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Redis", "address", cfg.Redis.Address)

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			log.Error("Failed to close MySQL connection", "error", err)
		}
	}(db)

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		log.Error("Failed to ping MySQL", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to MySQL")

	// Repositories
	itemRepo := mysql.NewMySQLItemRepository(db)
	auctionRepo := mysql.NewMySQLAuctionRepository(db)
	bidRepo := mysql.NewMySQLBidRepository(db)

	// Redis based components
	stateCache := redisinfra.NewStateCache(rdb)
	eventPublisher := redisinfra.NewEventPublisher(rdb)
	eventSubscriber := redisinfra.NewEventSubscriber(rdb, log)

	// Services
	clk := clock.Real{}
	auctionSvc := services.NewAuctionService(itemRepo, auctionRepo, bidRepo,
		eventPublisher, stateCache, clk, log)
	bidSvc := services.NewBidService(bidRepo, auctionSvc, eventPublisher,
		clk, cfg.Auction.ExtensionInterval, log)
	sweeper := services.NewExpirationSweeper(auctionRepo, auctionSvc, clk,
		cfg.Auction.SweepInterval, cfg.Auction.SweepBatchSize, log)

	// Live event feed
	hub := ws.NewHub(log)
	subscriberCtx, stopSubscriber := context.WithCancel(context.Background())
	defer stopSubscriber()
	go func() {
		err := eventSubscriber.Subscribe(subscriberCtx, func(event *domain.AuctionEvent) error {
			if err := hub.BroadcastToAuction(event.AuctionID, event); err != nil {
				return err
			}
			if event.Type == domain.EventAuctionClosed {
				hub.CloseAuctionWatchers(event.AuctionID)
			}
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Event subscriber stopped", "error", err)
		}
	}()

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	auctionHandler := handlers.NewAuctionHandler(auctionSvc, bidSvc,
		auctionRepo, bidRepo, stateCache, log)
	wsHandler := handlers.NewWebSocketHandler(hub, log)

	api := e.Group("/api/v1")
	api.POST("/auctions", auctionHandler.CreateAuction)
	api.GET("/auctions/:id", auctionHandler.GetAuction)
	api.GET("/auctions/:id/status", auctionHandler.GetAuctionStatus)
	api.GET("/auctions/:id/bids", auctionHandler.ListBids)
	api.POST("/auctions/:id/bids", auctionHandler.PlaceBid)

	e.GET("/ws/auctions/:id", wsHandler.Watch)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "auction-service",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Start the expiration sweeper
	if err := sweeper.Start(context.Background()); err != nil {
		log.Error("Failed to start expiration sweeper", "error", err)
		os.Exit(1)
	}

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("Starting server", "address", serverAddr)

	go func() {
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down auction service...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sweeper.Stop(); err != nil {
		log.Error("Failed to stop sweeper", "error", err)
	}
	stopSubscriber()

	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Auction service stopped")
}
