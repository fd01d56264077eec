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

	"github.com/dkeye/Gavel/internal/adapters/feed"
	router "github.com/dkeye/Gavel/internal/adapters/http"
	"github.com/dkeye/Gavel/internal/app"
	"github.com/dkeye/Gavel/internal/config"
	"github.com/dkeye/Gavel/internal/domain"
	"github.com/dkeye/Gavel/internal/permission"
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

	engine := permission.NewEngine(permission.DefaultRules()...)
	manager := app.NewManager(engine, app.Options{
		SeatCount:         cfg.SeatCount,
		DefaultStartPrice: cfg.DefaultStartPrice,
		DefaultIncrement:  cfg.DefaultIncrement,
		CountdownSeconds:  cfg.CountdownSeconds,
		ListingDelay:      cfg.ListingDelay,
		EventBuffer:       cfg.EventBuffer,
	})
	registry := app.NewRegistry()

	hub := feed.NewHub()
	go hub.Run(ctx, manager.Events())

	seedDemoRoom(manager)

	r := router.SetupRouter(cfg, manager, registry, hub)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Gavel server started")
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

// seedDemoRoom prepares a room with a seated auctioneer and a first lot so
// the API is explorable right after boot.
func seedDemoRoom(manager *app.Manager) {
	host, err := domain.NewUser("Hammer Hall Host", domain.RoleHost)
	if err != nil {
		log.Error().Err(err).Msg("seed host failed")
		return
	}
	room, err := manager.CreateRoom("Hammer Hall", host)
	if err != nil {
		log.Error().Err(err).Msg("seed room failed")
		return
	}

	auctioneer, err := domain.NewUser("First Auctioneer", domain.RoleAuctioneer)
	if err != nil {
		log.Error().Err(err).Msg("seed auctioneer failed")
		return
	}
	manager.JoinRoom(auctioneer, room)
	if _, err := manager.ApplyForMicrophone(auctioneer, room); err != nil {
		log.Error().Err(err).Msg("seed auctioneer could not take a seat")
		return
	}
	if err := manager.UploadItem(auctioneer, room, "Lucky phone number", "ends in 8888", 0, 0); err != nil {
		log.Error().Err(err).Msg("seed lot upload failed")
		return
	}
	log.Info().Str("room", string(room.ID())).Msg("demo room seeded")
}
