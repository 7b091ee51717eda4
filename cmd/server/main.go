// Package main provides the player server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/osa030/playbox/internal/api/web"
	"github.com/osa030/playbox/internal/app/resolve"
	"github.com/osa030/playbox/internal/app/session"
	"github.com/osa030/playbox/internal/infra/config"
	"github.com/osa030/playbox/internal/infra/logger"
	"github.com/osa030/playbox/internal/infra/spotify"
	"github.com/osa030/playbox/internal/infra/youtube"
)

var (
	app        = kingpin.New("playbox-server", "playbox playlist player server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{Output: "stdout", Level: "info"}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	// Flags take precedence over the logging section.
	if !*verbose && *logfile == "" {
		if err := logger.Init(logger.Config{Output: cfg.Logging.Output, Level: cfg.Logging.Level}); err != nil {
			zlog.Fatal().Msgf("Failed to initialize logger: %v", err)
		}
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements run even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()

	auth, err := spotify.NewAuthenticator(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.RedirectURI)
	if err != nil {
		return fmt.Errorf("failed to create spotify authenticator: %w", err)
	}

	ytClient, err := youtube.New(ctx, youtube.Config{APIKey: cfg.YouTube.APIKey})
	if err != nil {
		return fmt.Errorf("failed to create youtube client: %w", err)
	}

	scorer, err := resolve.NewScorer(cfg.Resolver.Scoring)
	if err != nil {
		return fmt.Errorf("invalid scoring config: %w", err)
	}

	builder := resolve.NewVariantBuilder(mergedOverrides(cfg))
	engine := resolve.NewEngine(ytClient, ytClient, builder, scorer, resolve.Options{
		MaxResults:        cfg.Resolver.MaxResults,
		DetailConcurrency: int64(cfg.Resolver.DetailConcurrency),
		CallTimeout:       time.Duration(cfg.Resolver.CallTimeoutSec) * time.Second,
		SearchSuffix:      cfg.Resolver.SearchSuffix,
	})

	sessionMgr := session.NewManager(engine)
	defer sessionMgr.Close()

	webServer := web.NewServer(auth, sessionMgr, cfg.Spotify.RefreshToken)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: h2c.NewHandler(webServer.Handler(), &http2.Server{}),
	}

	serverErrCh := make(chan error, 1)
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")
	return nil
}

// mergedOverrides layers configured artist overrides over the built-in
// table. Alias keys are matched lowercase.
func mergedOverrides(cfg *config.Config) resolve.Overrides {
	overrides := resolve.DefaultOverrides()
	for alias, name := range cfg.Resolver.ArtistOverrides {
		overrides[strings.ToLower(alias)] = name
	}
	return overrides
}
