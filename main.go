// main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gewnthar/airroutes/config"
	"github.com/gewnthar/airroutes/database"
	"github.com/gewnthar/airroutes/handlers"
	"github.com/gewnthar/airroutes/logging"
	"github.com/gewnthar/airroutes/scraper"
	"github.com/gewnthar/airroutes/services"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	if err := config.LoadConfig(*configPath); err != nil {
		slog.Error("Error loading configuration", "error", err)
		os.Exit(1)
	}
	cfg := config.AppConfig
	logging.Init(cfg.Logging)
	slog.Info("Configuration loaded", "port", cfg.Server.Port, "driver", cfg.Database.Driver, "dbname", cfg.Database.DBName)

	if err := database.InitDB(cfg.Database); err != nil {
		slog.Error("Error initializing database", "error", err)
		os.Exit(1)
	}
	defer database.CloseDB()

	store := database.NewStore(database.DB, cfg.Database.Driver).WithChunkSize(cfg.Ingest.BulkChunkSize)
	ingestSvc := services.NewIngestService(store, cfg.Ingest.PreviewLimit, cfg.Ingest.DelimiterRunes())
	refresher := services.NewRefresher(
		ingestSvc,
		scraper.NewDownloader(cfg.DataSources.DownloadTimeoutDuration),
		store,
		cfg.DataSources,
	)

	router := handlers.SetupRoutes(handlers.Handlers{
		Ingest: handlers.NewIngestHandler(ingestSvc, cfg.Server.MaxUploadMB<<20),
		Admin:  handlers.NewAdminHandler(refresher),
		DB:     store,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "addr", "http://localhost"+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Error starting server", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
