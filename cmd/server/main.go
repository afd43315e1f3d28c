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

	"github.com/soulmegle/sessiond/internal/adapters/httpapi"
	wsignal "github.com/soulmegle/sessiond/internal/adapters/signal"
	"github.com/soulmegle/sessiond/internal/app"
	"github.com/soulmegle/sessiond/internal/config"
	"github.com/soulmegle/sessiond/internal/match"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	reg := app.NewRegistry()
	pool := app.NewWaitingPool()
	rooms := app.NewRoomStore(pool, reg)
	matcher := match.NewClient(cfg.MatcherURL, cfg.MatchTimeout)

	life := &app.Lifecycle{
		Registry: reg,
		Pool:     pool,
		Rooms:    rooms,
		Matcher:  matcher,
	}
	relay := &app.Relay{Rooms: rooms}

	ctl := wsignal.NewController(life, relay, cfg)
	r := httpapi.SetupRouter(ctx, cfg, ctl, life)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("session server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
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
