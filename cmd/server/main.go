// cmd/server/main.go
//
// HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Bootstrap console logger.
//
//  2. Load settings once: YAML defaults → .env → process env.  When
//     VAULT_ADDR is set, `vault:` references are resolved first.  Any
//     Configuration Error is fatal.
//
//  3. Swap in the daily rotating file logger at the App.Debug level.
//
//  4. Build the explicit collaborators: JWT issuer, OAuth client config
//     (decodes the client secret), the generative-AI client, and the
//     http.Server for App.Host:App.Port.  None of them does I/O, so a bad
//     secret or port fails here before anything is dialed.
//
//  5. Open the PostgreSQL pool from Database.DSN() and log the server
//     version as an early sanity check.
//
//  6. Serve until SIGINT or SIGTERM, then drain.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/AdeptTravel/adept-settings/internal/auth"
	"github.com/AdeptTravel/adept-settings/internal/config"
	"github.com/AdeptTravel/adept-settings/internal/database"
	"github.com/AdeptTravel/adept-settings/internal/inference"
	"github.com/AdeptTravel/adept-settings/internal/logger"
	"github.com/AdeptTravel/adept-settings/internal/server"
	"github.com/AdeptTravel/adept-settings/internal/vault"
)

// collaborators are built from settings alone, without network or disk I/O.
type collaborators struct {
	issuer *auth.Issuer
	oauth  *oauth2.Config
	gen    *inference.Client
	srv    *http.Server
}

// prepare builds every collaborator that needs no I/O.  The server's
// handler is attached once the database is open.
func prepare(ctx context.Context, settings *config.Settings, redirectURL string) (*collaborators, error) {
	issuer, err := auth.NewIssuer(settings.Auth, settings.App.Name)
	if err != nil {
		return nil, fmt.Errorf("jwt issuer: %w", err)
	}
	oauthCfg, err := auth.OAuthConfig(settings.Auth, redirectURL)
	if err != nil {
		return nil, fmt.Errorf("oauth client: %w", err)
	}
	gen, err := inference.NewClient(ctx, settings.AI)
	if err != nil {
		return nil, fmt.Errorf("inference client: %w", err)
	}
	srv, err := server.New(settings.App, nil)
	if err != nil {
		return nil, fmt.Errorf("http server: %w", err)
	}
	return &collaborators{issuer: issuer, oauth: oauthCfg, gen: gen, srv: srv}, nil
}

func main() {
	var (
		envFile     = flag.String("env-file", config.DefaultEnvFile, "dotenv file with default values")
		defaults    = flag.String("defaults", "", "optional YAML defaults file")
		logRoot     = flag.String("log-root", ".", "directory that receives logs/")
		redirectURL = flag.String("oauth-redirect", "", "OAuth2 redirect URL")
	)
	flag.Parse()

	boot := logger.Bootstrap()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Settings ────────────────────────────────────────────────────
	//
	opts := []config.Option{config.WithEnvFile(*envFile), config.WithDefaultsFile(*defaults)}
	if os.Getenv("VAULT_ADDR") != "" {
		vc, err := vault.New(vault.Options{TTL: 5 * time.Minute})
		if err != nil {
			boot.Fatalw("vault client", "err", err)
		}
		opts = append(opts, config.WithResolver(vc))
		go vc.RenewLoop(ctx)
	}

	settings, err := config.Load(ctx, opts...)
	if err != nil {
		boot.Fatalw("configuration invalid", "err", err)
	}

	log, err := logger.New(logger.Options{
		Root:  *logRoot,
		Tee:   logger.RunningInTTY(),
		Debug: settings.App.Debug,
	})
	if err != nil {
		boot.Fatalw("start logger", "err", err)
	}
	defer func() { _ = log.Sync() }()

	//
	// ── 2.  Collaborators ───────────────────────────────────────────────
	//
	c, err := prepare(ctx, settings, *redirectURL)
	if err != nil {
		log.Fatalw("configuration invalid", "err", err)
	}
	log.Infow("oauth client ready", "client_id", c.oauth.ClientID)

	//
	// ── 3.  Database pool ───────────────────────────────────────────────
	//
	db, err := database.Open(ctx, settings.Database)
	if err != nil {
		log.Fatalw("connect database", "err", err)
	}
	defer db.Close()
	if v, err := database.ServerVersion(ctx, db); err == nil {
		log.Infow("database version", "version", v)
	}

	//
	// ── 4.  Serve ───────────────────────────────────────────────────────
	//
	srv := c.srv
	srv.Handler = server.Router(server.Deps{
		App:       settings.App,
		AI:        settings.AI,
		Issuer:    c.issuer,
		Generator: c.gen,
		DB:        db,
		Log:       log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("listening", "addr", srv.Addr, "env", settings.App.Env)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		log.Infow("shutting down")
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		log.Errorw("http server", "err", err)
		zap.L().Sync()
		os.Exit(1)
	}
}
