// cmd/web/main.go
//
// petit – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load configuration (conf/.env → conf/global.yaml → PETIT_ env),
//     resolving vault: references.
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Open the content database and build the store with the statement
//     timeout from config.
//
//  4. Build the collaborators: resolver, editor, submissions, credentials,
//     tokens, and the upload backend (local directory or S3).
//
//  5. Build the chi router and the *http.Server.
//
//  6. Run the server in an errgroup next to the pool monitor;
//     SIGINT/SIGTERM drains in-flight requests, stops the monitor, then
//     the pool closes.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/joel-cespedes/petit/internal/api"
	"github.com/joel-cespedes/petit/internal/auth"
	"github.com/joel-cespedes/petit/internal/config"
	"github.com/joel-cespedes/petit/internal/content"
	"github.com/joel-cespedes/petit/internal/database"
	"github.com/joel-cespedes/petit/internal/logger"
	"github.com/joel-cespedes/petit/internal/schema"
	"github.com/joel-cespedes/petit/internal/server"
	"github.com/joel-cespedes/petit/internal/store"
	"github.com/joel-cespedes/petit/internal/submission"
	"github.com/joel-cespedes/petit/internal/upload"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		zap.S().Errorw("petit stopped", "err", err)
		_ = zap.L().Sync()
		log.Fatalf("petit: %v", err)
	}
	_ = zap.L().Sync()
}

func run(ctx context.Context) error {
	//
	// ── 1.  Config + logger ─────────────────────────────────────────────
	//
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	logOut, err := logger.New(cfg.Log.Dir, cfg.Log.Level, runningInTTY())
	if err != nil {
		return err
	}

	//
	// ── 2.  Database ────────────────────────────────────────────────────
	//
	logOut.Infow("connecting to database", "driver", cfg.Database.Driver)
	db, err := database.OpenWithOptions(cfg.Database.Driver, cfg.Database.DSN, database.Options{
		MaxOpen:         cfg.Database.MaxOpen,
		MaxIdle:         cfg.Database.MaxIdle,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	logOut.Infow("database online", "driver", cfg.Database.Driver)

	st := store.New(db).WithTimeout(cfg.Database.StmtTimeout)

	//
	// ── 3.  Collaborators ───────────────────────────────────────────────
	//
	tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	if err != nil {
		return err
	}
	backend, err := uploadBackend(ctx, cfg.Upload)
	if err != nil {
		return err
	}

	deps := api.Deps{
		Catalog:        schema.Site(),
		Resolver:       content.NewResolver(st),
		Editor:         content.NewEditor(st),
		Submissions:    submission.New(st),
		Credentials:    auth.NewCredentials(st),
		Tokens:         tokens,
		Uploads:        upload.New(backend, cfg.Upload.MaxBytes),
		Health:         st,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		ForceHTTPS:     cfg.HTTP.ForceHTTPS,
	}
	if cfg.Upload.Backend == "local" {
		deps.UploadDir = cfg.Upload.Dir
		deps.UploadPrefix = cfg.Upload.URLPrefix
	}

	//
	// ── 4.  Serve until signalled ───────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, api.NewRouter(deps), cfg.HTTP.RequestTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx, srv) })
	g.Go(func() error { return database.Monitor(gctx, db, database.MonitorInterval) })
	if err := g.Wait(); err != nil {
		return err
	}
	logOut.Infow("petit stopped cleanly")
	return nil
}

// uploadBackend picks the storage for admin uploads.
func uploadBackend(ctx context.Context, c config.Upload) (upload.Backend, error) {
	if c.Backend == "s3" {
		return upload.NewS3(ctx, c.S3Bucket, c.S3Region, c.S3Prefix, c.PublicURL)
	}
	prefix := c.URLPrefix
	if c.PublicURL != "" {
		prefix = c.PublicURL
	}
	return upload.Local{Dir: c.Dir, URLPrefix: prefix}, nil
}
