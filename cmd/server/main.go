package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/Duet/internal/adapters/http"
	"github.com/dkeye/Duet/internal/adapters/sqlite"
	"github.com/dkeye/Duet/internal/app"
	"github.com/dkeye/Duet/internal/app/orch"
	"github.com/dkeye/Duet/internal/auth"
	"github.com/dkeye/Duet/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Err(err).Str("level", cfg.LogLevel).Msg("unknown log level, keeping info")
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer store.Close()
	if err := store.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("database not reachable")
	}

	o := &orch.Orchestrator{
		Registry:          app.NewRegistry(),
		Rooms:             app.NewRoomBroadcaster(),
		Resolver:          app.NewResolver(store),
		Directory:         app.NewDirectory(store),
		Conversations:     store,
		Messages:          store,
		Policy:            app.PolicyByName(cfg.BackpressurePolicy),
		NotifySendFailure: cfg.NotifySendFailure,
	}
	tokens := auth.NewTokenIssuer(cfg.Secret, cfg.TokenTTL)

	r := router.SetupRouter(ctx, cfg, o, tokens)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Duet server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
