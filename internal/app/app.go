// Package app initializes and runs the main application service.
// It configures logging, storage, authentication, and routing,
// and handles graceful shutdown.
package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jobtrackhq/jobtrack/internal/auth"
	"github.com/jobtrackhq/jobtrack/internal/config"
	"github.com/jobtrackhq/jobtrack/internal/db/jsondb"
	"github.com/jobtrackhq/jobtrack/internal/db/memorystorage"
	"github.com/jobtrackhq/jobtrack/internal/db/postgresdb"
	"github.com/jobtrackhq/jobtrack/internal/db/storage"
	"github.com/jobtrackhq/jobtrack/internal/logger"
	"github.com/jobtrackhq/jobtrack/internal/router"
)

const (
	storageTypeUnknown = iota
	storageTypePostgresql
	storageTypeFile
	storageTypeMemory
)

// App encapsulates the configuration, HTTP handler and storage backend
// needed to run the job tracker service.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	httpHandler http.Handler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - selecting and setting up storage
// - setting up token signing and the authentication gate
// - setting up the router and middleware
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.db, err = getStorageByType(app.cfg)
	if err != nil {
		return nil, err
	}

	tokenSigningSecretKey, err := base64.URLEncoding.DecodeString(app.cfg.TokenSigningSecretKey)
	if err != nil {
		return nil, err
	}

	theAuth := auth.New(tokenSigningSecretKey, app.cfg.TokenTTL)

	app.httpHandler = router.New(
		app.db,
		theAuth,
		theAuth,
	)

	return app, nil
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Saving database and exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getAvailableStorageType(cfg *config.Config) int {
	if cfg.DatabaseDSN != "" {
		return storageTypePostgresql
	}

	if cfg.DBFileName != "" {
		return storageTypeFile
	}

	return storageTypeMemory
}

func getStorageByType(cfg *config.Config) (storage.Storage, error) {
	switch getAvailableStorageType(cfg) {
	case storageTypePostgresql:
		return postgresdb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
			cfg.MigrationsDir,
		)

	case storageTypeFile:
		return jsondb.New(cfg.DBFileName)
	}

	return memorystorage.New()
}
