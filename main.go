package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/pollhub/cliparse"
	"github.com/danielhkuo/pollhub/db"
	"github.com/danielhkuo/pollhub/metrics"
	"github.com/danielhkuo/pollhub/middleware"
	"github.com/danielhkuo/pollhub/models"
	"github.com/danielhkuo/pollhub/router"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to the datastore
	dbConn, err := db.Open(ctx, db.Dialect(cfg.DatabaseType), cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Apply migrations
	if err := db.Migrate(ctx, dbConn, db.Dialect(cfg.DatabaseType)); err != nil {
		slog.Error("schema migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Seed choices and accounts
	seed := db.SeedData{
		Choices: db.DefaultChoices,
		Users: []db.SeedUser{
			{Username: "admin", Password: cfg.SeedAdminPassword, Role: models.RoleAdmin},
			{Username: "user", Password: cfg.SeedUserPassword, Role: models.RoleUser},
		},
	}
	if err := db.Seed(ctx, dbConn, seed); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	metrics.Register()

	// Create router
	mux := router.NewRouter(dbConn, cfg)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(cfg.CORSOrigins)(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal, then let in-flight requests finish
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}
