/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the margin engine server: configuration,
  dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env / environment, flags override)
  2. Initialize structured logging
  3. Open the SQLite record store
  4. Wire the rate provider (HTTP source + fallback table)
  5. Configure the router and the monthly digest job
  6. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides DB_PATH; ":memory:" works)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, drain active requests
  (30s timeout), stop the digest scheduler, close the database.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/margin-engine/api"
	"github.com/warp/margin-engine/config"
	"github.com/warp/margin-engine/engine"
	"github.com/warp/margin-engine/pkg/logger"
	"github.com/warp/margin-engine/rates"
	"github.com/warp/margin-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("load configuration")
	}

	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *dbPath).Msg("open database")
	}
	defer store.Close()

	var source rates.Source
	if cfg.RatesURL != "" {
		source = &rates.HTTPSource{URL: cfg.RatesURL}
	}
	provider := rates.NewProvider(source, engine.DefaultFallbackRates(cfg.BaseCurrency), cfg.RatesTimeout, log)

	eng := engine.New(cfg.BaseCurrency, engine.DefaultPolicy())
	handler := api.NewHandler(store, provider, eng, log)
	router := api.NewRouter(handler)

	digest := api.NewDigestScheduler(handler, log)
	if err := digest.Start(); err != nil {
		log.Fatal().Err(err).Msg("start digest scheduler")
	}
	defer digest.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", *port).Str("base_currency", cfg.BaseCurrency).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}
