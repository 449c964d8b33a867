package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anusha/bdaycal/internal/config"
	"github.com/anusha/bdaycal/internal/harmonize"
	"github.com/anusha/bdaycal/internal/logging"
	"github.com/anusha/bdaycal/internal/server"
	"github.com/anusha/bdaycal/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	var traceStore store.TraceStore
	if cfg.Trace.Dir != "" {
		sqliteStore, err := store.NewSQLiteStore(cfg.Trace.Dir)
		if err != nil {
			logger.Error("failed to open trace store", "error", err, "dir", cfg.Trace.Dir)
			os.Exit(1)
		}
		traceStore = sqliteStore
		defer func() {
			if err := sqliteStore.Close(); err != nil {
				logger.Warn("closing trace store failed", "error", err)
			}
		}()
		logger.Info("trace store enabled", "dir", cfg.Trace.Dir)
	}

	pipeline := harmonize.NewPipeline(rulesFromConfig(cfg.Harmonizer), nil, cfg.Harmonizer.CalendarName, logger)
	apiHandlers := server.NewAPIHandlers(logger, pipeline, traceStore)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.TraceHealthService{Store: traceStore},
		API:              apiHandlers,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func rulesFromConfig(cfg config.HarmonizerConfig) harmonize.Rules {
	rules := harmonize.DefaultRules()
	if cfg.AlarmHour > 0 {
		rules.AlarmOffset = time.Duration(cfg.AlarmHour) * time.Hour
	}
	if cfg.MinBirthYear > 0 {
		rules.MinYear = cfg.MinBirthYear
	}
	return rules
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
