package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"movie-catalog-service/internal/api"
	"movie-catalog-service/internal/config"
	"movie-catalog-service/internal/store"
)

// connectToDB opens the database connection and configures the pool.
func connectToDB(dbURL string, logger *slog.Logger) (*sqlx.DB, error) {
	logger.Info("Connecting to PostgreSQL")
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	logger.Info("Successfully connected to PostgreSQL database")
	return db, nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	validate := validator.New()

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, relying on process environment")
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := connectToDB(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		logger.Info("Closing PostgreSQL database connection")
		if err := db.Close(); err != nil {
			logger.Error("Failed to close PostgreSQL connection", slog.String("error", err.Error()))
		}
	}()

	movieStorage, err := store.NewPostgresMovieStore(db, logger)
	if err != nil {
		logger.Error("Failed to initialize PostgreSQL movie store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Schema creation and demo seeding run exactly once, before the server
	// accepts traffic.
	startupCtx := context.Background()
	if err := movieStorage.EnsureSchema(startupCtx); err != nil {
		logger.Error("Failed to ensure movies schema", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := movieStorage.Seed(startupCtx, store.SeedMinimum); err != nil {
		logger.Error("Failed to seed movies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	movieAPIHandler := api.NewMovieHandler(movieStorage, logger, validate)
	httpRouter := api.NewRouter(movieAPIHandler)
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Movie catalog HTTP server starting", slog.String("port", cfg.Port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server ListenAndServe() failed", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Movie catalog service shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}
}
