package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sqliteopus/opus/admin"
	"github.com/sqliteopus/opus/cfg"
	"github.com/sqliteopus/opus/db"
	"github.com/sqliteopus/opus/telemetry"
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := cfg.Load(*cfg.ConfigPathFlag)
	if err != nil {
		panic(err)
	}

	if err := config.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	// Setup logging
	var writer io.Writer = zerolog.NewConsoleWriter()
	if config.Logging.Format == "json" {
		writer = os.Stdout
	}
	gLog := zerolog.New(writer).
		With().
		Timestamp().
		Logger()

	if config.Logging.Verbose {
		log.Logger = gLog.Level(zerolog.DebugLevel)
	} else {
		log.Logger = gLog.Level(zerolog.InfoLevel)
	}

	log.Info().Msg("Opus - SQLite web console")
	telemetry.Initialize(config.Prometheus.Enabled)

	// One connection holder for the whole process; the HTTP layer receives
	// it at construction time.
	holder := db.NewHolder()
	defer holder.Disconnect()

	// Pre-configured database path triggers auto-connect. Failure is a
	// warning, not a startup abort: manual connect stays possible.
	if config.Database.Path != "" {
		if err := holder.Connect(config.Database.Path); err != nil {
			log.Warn().Err(err).Str("path", config.Database.Path).Msg("Auto-connect failed")
		}
	}

	mux := http.NewServeMux()
	admin.RegisterRoutes(mux, admin.NewHandlers(holder, config))

	if handler := telemetry.Handler(); handler != nil {
		mux.Handle(config.Prometheus.Path, handler)
	}

	addr := fmt.Sprintf("%s:%d", config.HTTP.BindAddress, config.HTTP.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", addr).Str("prefix", "/"+config.HTTP.URLPrefix).Msg("Serving HTTP")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP shutdown error")
	}
}
