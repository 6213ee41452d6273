package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exchange-chat/src/config"
	datasource "exchange-chat/src/data_source"
	"exchange-chat/src/data_source/privatbank"
	"exchange-chat/src/helpers"
	"exchange-chat/src/interfaces"
	"exchange-chat/src/logger"
	"exchange-chat/src/network"
	"exchange-chat/src/server"
	"exchange-chat/src/storage"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file (empty for built-in defaults)")
	flag.Parse()

	// Load config from YAML file
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.NewConfig(*configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg, cfg.Name)

	// 1. Audit log
	audit, err := storage.NewAuditLog(cfg.MConfig, appLogger.Named("Audit"))
	if err != nil {
		appLogger.Critical("Failed to create audit log: %v", err)
	}
	if err := audit.Initialize(); err != nil {
		appLogger.Critical("Failed to open audit log: %v", err)
	}
	defer audit.Close()

	// 2. Rate pipeline
	var networkManager interfaces.INetworkManager = network.NewAsyncNetworkManager(cfg.MConfig, appLogger.Named("Network"))
	var provider interfaces.IRateProvider = privatbank.NewPrivatBankSource(cfg.MConfig, networkManager, appLogger.Named("PrivatBank"))
	var collector interfaces.IRateCollector = datasource.NewRateCollector(cfg.MConfig, provider, appLogger.Named("Collector"))

	// 3. Chat server
	srv := server.NewChatServer(cfg.MConfig, appLogger, collector, audit, helpers.RandomFullName)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	case <-quit:
		appLogger.Info("Shutting down...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		appLogger.Warning("Shutdown: %v", err)
	}
}
