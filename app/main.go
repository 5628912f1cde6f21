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

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/rss-curator/app/api"
	"github.com/lysyi3m/rss-curator/app/cache"
	"github.com/lysyi3m/rss-curator/app/cfg"
	"github.com/lysyi3m/rss-curator/app/curator"
	"github.com/lysyi3m/rss-curator/app/database"
	"github.com/lysyi3m/rss-curator/app/feed"
	"github.com/lysyi3m/rss-curator/app/publish"
	"github.com/lysyi3m/rss-curator/app/rewrite"
)

func main() {
	appCfg, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// help was shown
		return
	}

	setupLogger(appCfg.Debug)

	if err := run(appCfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
}

func run(appCfg *cfg.Cfg) error {
	slog.Info("Starting RSS Curator", "version", appCfg.Version)

	ctx := context.Background()

	db, err := database.Open(appCfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return err
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	store, err := newCacheStore(ctx, appCfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sources := database.NewFeedRepository(db)
	documents := database.NewDocumentRepository(db)
	drafts := database.NewDraftRepository(db)
	settings := database.NewSettingsRepository(db)

	fetcher := feed.NewFetcher(&http.Client{}, feed.NewParser(), appCfg.UserAgent, appCfg.FetchTimeout)
	aggCache := cache.NewAggregationCache(store)
	aggregator := feed.NewAggregator(sources, fetcher).WithCache(aggCache)
	client := rewrite.NewClient(appCfg.AIEndpoint, appCfg.AIModel)
	workflow := publish.NewWorkflow(client, documents, drafts, appCfg.PublicURL())

	app := curator.New(curator.Deps{
		Sources:       sources,
		Aggregator:    aggregator,
		Cache:         aggCache,
		Drafts:        drafts,
		Documents:     documents,
		Settings:      settings,
		Verifier:      client,
		Publisher:     workflow,
		Loader:        feed.NewSourceLoader(appCfg.FeedsDir),
		DefaultPrompt: cfg.DefaultSystemPrompt,
		DefaultAuthor: appCfg.DefaultAuthor,
	})

	if err := app.SeedSettings(ctx, appCfg.AIAPIKey, appCfg.SystemPrompt); err != nil {
		return err
	}

	count, err := app.ReloadSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sources from %s: %w", appCfg.FeedsDir, err)
	}
	slog.Info("Sources registered", "feeds_dir", appCfg.FeedsDir, "count", count)

	handler := api.NewHandler(app, api.Options{
		PublicURL:    appCfg.PublicURL(),
		Version:      appCfg.Version,
		CacheBackend: aggCache.Backend(),
		Location:     appCfg.Location,
	})
	router := api.NewServer(handler, appCfg.APIAccessKey)

	// WriteTimeout leaves room for a full rewrite round trip
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: rewrite.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "public_url", appCfg.PublicURL())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case runErr = <-serverErrChan:
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("RSS Curator shutdown complete")
	return runErr
}

func newCacheStore(ctx context.Context, appCfg *cfg.Cfg) (cache.Store, error) {
	if appCfg.RedisAddr == "" {
		slog.Info("Using in-memory aggregation cache")
		return cache.NewMemoryStore(), nil
	}

	store, err := cache.NewRedisStore(ctx, cache.RedisOptions{
		Addr:     appCfg.RedisAddr,
		Password: appCfg.RedisPassword,
		DB:       appCfg.RedisDB,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}
