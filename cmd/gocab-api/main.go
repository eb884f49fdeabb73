// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gocab/internal/config"
	httptransport "gocab/internal/http"
	"gocab/internal/infra"
	"gocab/internal/maps"
	"gocab/internal/modules/dispatch"
	"gocab/internal/modules/fleet"
	"gocab/internal/modules/pricing"
	"gocab/internal/modules/ride"
	"gocab/internal/realtime"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Log.Level)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Error("postgres init failed", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr, cfg.Redis.Password)

	mapsProvider, err := maps.NewGoogleProvider(cfg.Maps.APIKey)
	if err != nil {
		log.Error("maps provider init failed", "error", err)
		os.Exit(1)
	}

	verifier := infra.NewAuthServiceVerifier(cfg.Auth.ServiceURL)

	registry := realtime.NewRegistry()

	fleetStore := fleet.NewRedisStore(redisClient)
	fleetSvc := fleet.NewService(fleetStore, registry, log)

	pricingSvc := pricing.NewService(mapsProvider)

	rideStore := ride.NewPGStore(dbPool)
	rideSvc := ride.NewService(rideStore, pricingSvc)

	coordinator := dispatch.NewCoordinator(fleetSvc, mapsProvider, registry, cfg.Dispatch.RadiusKm, log)

	gateway := realtime.NewGateway(registry, fleetSvc, verifier, log)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Rides:    rideSvc,
		Pricing:  pricingSvc,
		Fleet:    fleetSvc,
		Maps:     mapsProvider,
		Dispatch: coordinator,
		Gateway:  gateway,
		Verifier: verifier,
		Log:      log,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info("gocab api listening", "addr", cfg.HTTP.Addr, "dispatch_radius_km", cfg.Dispatch.RadiusKm)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}
