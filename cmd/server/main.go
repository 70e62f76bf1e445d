package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"time"

	"go.uber.org/zap"

	"crisis-assist/internal/api"
	"crisis-assist/internal/config"
	"crisis-assist/internal/graceful"
	"crisis-assist/internal/llm"
	"crisis-assist/internal/location"
	"crisis-assist/internal/logging"
	"crisis-assist/internal/news"
	"crisis-assist/internal/places"
	"crisis-assist/internal/session"
	"crisis-assist/internal/tools"
)

const shutdownTimeout = 10 * time.Second

func main() {
	envLoaded := config.LoadEnv()
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if !envLoaded {
		logger.Info("no .env file found, assuming environment variables are set directly")
	}
	for _, key := range cfg.MissingKeys() {
		logger.Warn("credential not set, dependent features will return no results", zap.String("env", key))
	}

	ctx, cancel := graceful.Context(context.Background(), logger)
	defer cancel()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout()}

	// Location is resolved once at startup and shared by every session.
	resolver := location.NewResolver(location.NewClient(cfg, httpClient),
		location.StdinPrompter{In: os.Stdin, Out: os.Stdout}, logger)
	var loc *location.Location
	resolved, source, err := resolver.Resolve(ctx)
	if err != nil {
		logger.Warn("continuing without a location", zap.Error(err))
	} else {
		loc = &resolved
	}

	finder := places.NewFinder(cfg, httpClient, logger)
	registry := tools.NewRegistry(logger)
	if err := registry.Register(places.NewTool(finder, loc)); err != nil {
		logger.Fatal("tool registration failed", zap.Error(err))
	}

	generator := llm.NewGenerator(cfg, llm.NewClient(cfg, &http.Client{Timeout: cfg.LLMTimeout()}), registry, logger)
	store := session.NewStore(generator, loc, logger)

	r := api.SetupRouter(api.Deps{
		Config:         cfg,
		Sessions:       store,
		Places:         finder,
		Tools:          registry,
		News:           news.NewFetcher(cfg, httpClient, logger),
		Location:       loc,
		LocationSource: source,
		Logger:         logger,
	})

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Addr()), zap.String("subpath", path.Join("/", cfg.Server.Subpath)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := store.CancelAll(shutdownCtx); err != nil {
		logger.Warn("pending answers did not stop in time", zap.Error(err))
	}
	logger.Info("server stopped")
}
