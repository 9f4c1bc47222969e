package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"fabric-registry/internal/config"
	"fabric-registry/internal/fabric"
	fabricpg "fabric-registry/internal/fabric/postgres"
	"fabric-registry/internal/jobs"
	"fabric-registry/internal/logger"
	"fabric-registry/internal/scheduler"
	"fabric-registry/internal/service"
)

// The sweeper lifts expired temporary suspensions on a schedule. It is a
// plain caller of the public operations; the core itself stays lazy.
func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.Bool("once", false, "Run the sweep once and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting fabric-registry sweeper...", "fabric_store", cfg.Fabric.Store)

	var store fabric.Store
	switch cfg.Fabric.Store {
	case "", "memory":
		store = fabric.NewMemoryStore(nil)
	case "postgres":
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Fatalf("Failed to ping database: %v", err)
		}
		store = fabricpg.NewStore(db, nil)
	default:
		log.Fatalf("Unknown fabric store %q", cfg.Fabric.Store)
	}

	services := service.New(store, nil)
	runner := jobs.NewJobRunner(services, cfg)

	if *runOnce {
		runner.SweepExpiredSuspensions()
		return
	}

	sched := scheduler.NewScheduler(runner)
	sched.Start()
	defer sched.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down sweeper")
}
