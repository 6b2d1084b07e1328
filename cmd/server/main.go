package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/openportfolio/portfolio-backend/internal/adapter/marketdata/coingecko"
	"github.com/openportfolio/portfolio-backend/internal/adapter/marketdata/httpx"
	"github.com/openportfolio/portfolio-backend/internal/adapter/marketdata/yahoo"
	"github.com/openportfolio/portfolio-backend/internal/adapter/repository/postgres"
	"github.com/openportfolio/portfolio-backend/internal/adapter/rest"
	"github.com/openportfolio/portfolio-backend/internal/config"
	"github.com/openportfolio/portfolio-backend/internal/usecase/poller"
	"github.com/openportfolio/portfolio-backend/internal/usecase/pricing"
	"github.com/openportfolio/portfolio-backend/internal/usecase/seeder"
	"github.com/openportfolio/portfolio-backend/internal/usecase/valuation"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	// 1. Setup Database
	// Add 2-second delay to ensure Postgres is up (Simple retry)
	time.Sleep(2 * time.Second)

	db, err := postgres.NewDB(cfg.DBConnStr)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// 2. Initialize Repositories (Postgres)
	assetRepo := postgres.NewAssetRepository(db)
	holdingRepo := postgres.NewHoldingRepository(db)
	priceRepo := postgres.NewPriceRepository(db)

	// 3. Initialize Market Data Clients
	hc := httpx.New(cfg.HTTPTimeout)
	cryptoClient := coingecko.New(cfg.CoinGeckoBaseURL, hc)
	quoteClient := yahoo.New(cfg.YahooBaseURL, hc)

	// 4. Initialize Services (Use Cases)
	resolver := pricing.NewSpotResolver(cryptoClient, quoteClient)
	valuationService := valuation.NewService(assetRepo, holdingRepo, priceRepo, resolver, logger)
	pollService := poller.NewService(assetRepo, priceRepo, resolver, cfg.BaseCurrency, logger)

	// Initialize Demo Seeder and run it
	demoSeeder := seeder.NewDemoSeeder(assetRepo, holdingRepo)
	if err := demoSeeder.Seed(ctx); err != nil {
		logger.Fatal("Failed to seed demo portfolio", zap.Error(err))
	}
	logger.Info("Demo portfolio seeded")

	// 5. Start Price Poller
	pollCtx, stopPoller := context.WithCancel(ctx)
	go pollService.Run(pollCtx, cfg.PollInterval)

	// 6. Start HTTP Server
	server := rest.NewServer(assetRepo, holdingRepo, priceRepo, valuationService, pollService, cfg.BaseCurrency, logger)

	httpServer := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: server.Router(cfg.APIToken),
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to serve HTTP server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	waitForShutdown(httpServer, stopPoller, logger)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(httpServer *http.Server, stopPoller context.CancelFunc, logger *zap.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("Received signal, shutting down gracefully", zap.String("signal", sig.String()))

	stopPoller()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
		return
	}
	logger.Info("HTTP server stopped")
}
