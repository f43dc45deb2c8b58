package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shopfront.dev/ecommerce-backend/internal/api"
	"shopfront.dev/ecommerce-backend/internal/auth"
	"shopfront.dev/ecommerce-backend/internal/config"
	"shopfront.dev/ecommerce-backend/internal/core"
	"shopfront.dev/ecommerce-backend/internal/logger"
	"shopfront.dev/ecommerce-backend/internal/store"
)

func main() {
	seedOnly := flag.Bool("seed", false, "Create the schema, seed sample data and exit")
	noSeed := flag.Bool("no-seed", false, "Skip seeding sample data on startup")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log, *seedOnly, *noSeed); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger, seedOnly, noSeed bool) error {
	hasher, err := auth.NewPasswordHasher(cfg.PasswordHashing)
	if err != nil {
		return err
	}
	if cfg.PasswordHashing == auth.ModePlain {
		log.Warn("passwords are stored in plain text; set PASSWORD_HASHING=bcrypt for production")
	}

	dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbStore.Close()

	if !noSeed || seedOnly {
		res, err := dbStore.Seed(context.Background(), hasher.Hash)
		if err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
		log.Info("database seeded", "products_inserted", res.ProductsInserted, "users_inserted", res.UsersInserted)
	}
	if seedOnly {
		return nil
	}

	apiHandler := api.NewAPIHandler(
		core.NewCatalogService(dbStore),
		core.NewAccountService(dbStore, hasher, log),
		core.NewChatService(dbStore),
		dbStore,
		log,
	)
	router := api.NewRouter(apiHandler, api.RouterOptions{
		Logger:     log,
		CORSMaxAge: cfg.CORSMaxAge,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("could not listen on %s: %w", srv.Addr, err)
	case <-quit:
	}
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// dbStore.Close() runs via defer.
	log.Info("server exiting gracefully")
	return nil
}
