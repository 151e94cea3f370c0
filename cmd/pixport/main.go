package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/franksops/pixport/catalog"
	"github.com/franksops/pixport/config"
	"github.com/franksops/pixport/logger"
	"github.com/franksops/pixport/provider"
	"github.com/franksops/pixport/store"
	"github.com/franksops/pixport/web"
)

const shutdownGrace = 10 * time.Second

func main() {
	var (
		addr      string
		envFile   string
		stateDir  string
		exportDir string
	)

	flag.StringVar(&addr, "addr", "", "HTTP listen address (overrides PIXPORT_ADDR)")
	flag.StringVar(&envFile, "env-file", "", "Path to a .env file to seed the environment")
	flag.StringVar(&stateDir, "state-dir", "", "Directory for the run-history database (overrides PIXPORT_STATE_DIR)")
	flag.StringVar(&exportDir, "export-dir", "", "Staging directory for export bundles (overrides PIXPORT_EXPORT_DIR)")
	flag.Parse()

	cfg, err := config.Load(envFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if stateDir != "" {
		cfg.StateDir = stateDir
	}
	if exportDir != "" {
		cfg.ExportDir = exportDir
	}

	if err := os.MkdirAll(cfg.StateDir, 0755); err != nil {
		log.Fatalf("Failed to create state directory: %v", err)
	}
	if err := os.MkdirAll(cfg.ExportDir, 0755); err != nil {
		log.Fatalf("Failed to create export directory: %v", err)
	}

	logger.Init(filepath.Join(cfg.StateDir, "pixport.log"))

	history, err := store.NewBoltStore(filepath.Join(cfg.StateDir, "runs.db"))
	if err != nil {
		log.Fatalf("Failed to open run history store: %v", err)
	}
	defer history.Close()

	opts := web.Options{
		History:        history,
		LocalSrc:       provider.NewLocalSource(),
		DefaultFolder:  cfg.CloudinaryFolder,
		DefaultWorkers: cfg.MaxWorkers,
		ExportDir:      cfg.ExportDir,
	}

	// The catalog, Cloudinary and Dropbox integrations are each optional:
	// an unconfigured one disables its endpoints, not the whole service.
	if cfg.DBName != "" {
		db, err := catalog.Open(cfg.DSN(), cfg.CDNBase)
		if err != nil {
			log.Fatalf("Failed to connect to catalog database: %v", err)
		}
		defer db.Close()
		opts.Catalog = db
	} else {
		slog.Warn("DB_NAME not set, catalog endpoints disabled")
	}

	if cfg.CloudinaryCloud != "" {
		uploader, err := provider.NewCloudinaryUploader(cfg.CloudinaryCloud, cfg.CloudinaryKey, cfg.CloudinarySecret)
		if err != nil {
			log.Fatalf("Failed to initialize cloudinary client: %v", err)
		}
		opts.Uploader = uploader
		opts.Resources = uploader
	} else {
		slog.Warn("CLOUDINARY_CLOUD_NAME not set, upload endpoints disabled")
	}

	if cfg.DropboxToken != "" {
		dbx := provider.NewDropboxSource(cfg.DropboxToken)
		opts.DropboxSrc = dbx
		opts.Browser = dbx
	} else {
		slog.Warn("DROPBOX_TOKEN not set, dropbox endpoints disabled")
	}

	server := web.NewServer(opts)
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // exports and bulk uploads can run long
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}
}
