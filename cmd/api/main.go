// Package main is the entry point for the Transfer Tracker API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/pkordes/transfer-tracker/internal/archive"
	"github.com/pkordes/transfer-tracker/internal/config"
	"github.com/pkordes/transfer-tracker/internal/handler"
	"github.com/pkordes/transfer-tracker/internal/metrics"
	"github.com/pkordes/transfer-tracker/internal/middleware"
	"github.com/pkordes/transfer-tracker/internal/repo"
	"github.com/pkordes/transfer-tracker/internal/service"
	"github.com/pkordes/transfer-tracker/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	// A missing .env is normal in containers; real env vars always win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Store ------------------------------------------------------------
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open transfer store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	slog.Info("transfer store ready", "driver", cfg.StoreDriver, "profile", cfg.Profile)

	// --- Archive ----------------------------------------------------------
	archiveStore, err := openArchive(ctx, cfg.Archive)
	if err != nil {
		slog.Error("failed to open export archive", "driver", cfg.Archive.Driver, "error", err)
		os.Exit(1)
	}
	slog.Info("export archive ready", "driver", cfg.Archive.Driver)

	// --- Services ---------------------------------------------------------
	m := metrics.New()
	transferSvc := service.NewTransferService(store, cfg.Profile, m)
	exportSvc := service.NewExportService(store, cfg.Profile, archiveStore, m)
	server := handler.NewServer(transferSvc, exportSvc, logger)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → CORS → BodyLimit → Recoverer.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxUploadBytes))
	r.Use(chimiddleware.Recoverer)

	server.Routes(r)
	r.Handle("/metrics", m.Handler())

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStore builds the TransferRepo selected by cfg.StoreDriver, applying
// migrations for the database-backed drivers. The returned func releases
// whatever the store holds open.
func openStore(ctx context.Context, cfg config.Config) (repo.TransferRepo, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		// New() does not open connections immediately; the ping does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		db := stdlib.OpenDBFromPool(pool)
		if err := migrations.Up(ctx, goose.DialectPostgres, db); err != nil {
			_ = db.Close()
			pool.Close()
			return nil, nil, err
		}
		return repo.NewPostgresTransferRepo(pool, cfg.Profile), func() {
			_ = db.Close()
			pool.Close()
		}, nil

	case config.StoreSQLite:
		db, err := repo.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.Up(ctx, goose.DialectSQLite3, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo.NewSQLiteTransferRepo(db, cfg.Profile), func() { _ = db.Close() }, nil

	default:
		return repo.NewCSVTransferRepo(cfg.DataFile, cfg.Profile), func() {}, nil
	}
}

// openArchive returns nil when archiving is disabled; the export service
// reports that to clients as a 404.
func openArchive(ctx context.Context, cfg config.ArchiveConfig) (archive.Store, error) {
	switch cfg.Driver {
	case archive.DriverFS:
		fs, err := archive.NewFSStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case archive.DriverS3:
		s3, err := archive.NewS3Store(ctx, archive.S3Config{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PathStyle:       cfg.S3PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return s3, nil
	default:
		return nil, nil
	}
}
