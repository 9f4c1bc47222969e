package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	_ "github.com/lib/pq"

	api "fabric-registry/internal/api/http"
	"fabric-registry/internal/config"
	"fabric-registry/internal/fabric"
	fabricpg "fabric-registry/internal/fabric/postgres"
	"fabric-registry/internal/logger"
	"fabric-registry/internal/obs"
	"fabric-registry/internal/security"
	"fabric-registry/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting fabric-registry...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "fabric_store", cfg.Fabric.Store)

	var store fabric.Store
	switch cfg.Fabric.Store {
	case "", "memory":
		logger.Info("Using in-memory fabric store")
		store = fabric.NewMemoryStore(nil)
	case "postgres":
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Error("Failed to ping database", "error", err)
			log.Fatalf("Failed to ping database: %v", err)
		}
		logger.Info("Database connection established", "host", cfg.Database.Host, "database", cfg.Database.Database)
		store = fabricpg.NewStore(db, nil)
	default:
		log.Fatalf("Unknown fabric store %q", cfg.Fabric.Store)
	}

	obs.Init()

	services := service.New(store, nil)
	tokens := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TokenExpiryMinute)
	handler := api.NewHandler(services, tokens)

	addr := cfg.GetServerAddress()
	logger.Info("HTTP server listening", "address", addr)
	if err := http.ListenAndServe(addr, handler.Router()); err != nil {
		logger.Error("HTTP server stopped", "error", err)
		log.Fatalf("HTTP server stopped: %v", err)
	}
}
