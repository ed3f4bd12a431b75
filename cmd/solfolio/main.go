package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"

	"solfolio/internal/app/port"
	"solfolio/internal/app/service"
	"solfolio/internal/config"
	"solfolio/internal/infrastructure/gateway"
	"solfolio/internal/infrastructure/priceapi"
	"solfolio/internal/infrastructure/restapi"
	solanainfra "solfolio/internal/infrastructure/solana"
	"solfolio/internal/infrastructure/walletloader"
	"solfolio/internal/pkg/logger"
	"solfolio/internal/pkg/metrics"
)

const configPath = "config/config.yml"

func main() {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()
	logger.InitSlog(zapLogger)

	logger.Info("Portfolio service starting", "logLevel", cfg.Logging.Level)

	metrics.MustRegister()

	appLogger := logger.NewSlogAdapter()

	chainClient := solanainfra.NewClient(
		cfg.Solana.RPCURL,
		cfg.Solana.RequestsPerSecond,
		zapLogger.Named("ChainClient"),
	)
	logger.Info("Chain client initialized", "rpcURL", cfg.Solana.RPCURL)

	rentCalculator := solanainfra.NewRentCalculator(chainClient, nil)

	gatewayClient := gateway.NewFallbackResolver(
		cfg.Gateway.IPFSGateways,
		time.Duration(cfg.Gateway.AttemptTimeoutMillis)*time.Millisecond,
		zapLogger,
	)

	priceClient := priceapi.NewJupiterClient(
		cfg.PriceAPI.PriceBaseURL,
		cfg.PriceAPI.TokenListURL,
		time.Duration(cfg.PriceAPI.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
	)

	var nativeSource port.NativePriceSource
	if nativeSource, err = priceapi.NewQuoteSource(zapLogger); err != nil {
		logger.Warn("Quote source unavailable, native price fallback chain is shorter", "error", err)
		nativeSource = nil
	}

	var floorSource port.FloorPriceSource
	if cfg.NFT.FloorPriceFile != "" {
		floorSource, err = priceapi.NewStaticFloorSource(cfg.NFT.FloorPriceFile, zapLogger)
		if err != nil {
			logger.Warn("Failed to load floor price table, floors disabled", "error", err)
			floorSource = priceapi.NewNopFloorSource()
		}
	} else {
		floorSource = priceapi.NewNopFloorSource()
	}

	registryCache := cache.New(
		time.Duration(cfg.PriceAPI.RegistryCacheTTLMinutes)*time.Minute, 10*time.Minute)
	priceCache := cache.New(
		time.Duration(cfg.PriceAPI.PriceCacheTTLMinutes)*time.Minute, time.Minute)

	priceService := service.NewPriceService(
		priceClient,
		nativeSource,
		registryCache,
		priceCache,
		time.Duration(cfg.PriceAPI.BatchDelayMillis)*time.Millisecond,
		appLogger,
	)
	scannerService := service.NewScannerService(chainClient, appLogger)
	nftService := service.NewNFTService(
		chainClient, gatewayClient, floorSource, rentCalculator, scannerService, appLogger)
	portfolioService := service.NewPortfolioService(
		scannerService,
		priceService,
		nftService,
		appLogger,
		cfg.Performance.MaxConcurrentRoutines,
		time.Duration(cfg.Performance.InterWalletDelayMillis)*time.Millisecond,
	)
	summaryService := service.NewSummaryService(appLogger)
	burnService := service.NewBurnService(chainClient, rentCalculator, appLogger)

	walletProvider := walletloader.NewWalletFileLoader(cfg.Files.Wallets, appLogger.Info, appLogger.Warn)

	handler := restapi.NewPortfolioHandler(
		portfolioService, nftService, summaryService, burnService, walletProvider, appLogger)
	router := restapi.SetupRouter(handler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", "error", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan

	logger.Info("Shutdown signal received, stopping HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	} else {
		logger.Info("HTTP server stopped")
	}

	zapLogger.Sync()
	logger.Info("Portfolio service stopped")
}
