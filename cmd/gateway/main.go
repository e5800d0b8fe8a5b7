package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/apikey"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/catalog"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/clock"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/config"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/database"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/gateway"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/logging"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/models"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/monitoring"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/ratelimit"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/registry"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/server"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/telemetry"
	"github.com/Hamidon94/ultra.dogwalking-sub000/migrations"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(&cfg.Logging, cfg.Server.Env)

	log.Info().
		Str("env", cfg.Server.Env).
		Str("version", cfg.Gateway.Version).
		Msg("Starting public API gateway")

	monitoring.Init()

	ctx := context.Background()
	clk := clock.System()

	// Key store: Postgres when configured, in-memory otherwise.
	var keys apikey.Store
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()
		if err := database.RunMigrations(cfg.Database.URL, migrations.FS, "."); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		keys = apikey.NewPostgresStore(db.Pool, clk, cfg.RateLimit.DefaultCeiling, cfg.RateLimit.MaxCeiling)
		log.Info().Msg("Using Postgres API key store")
	} else {
		keys = apikey.NewMemoryStore(clk, cfg.RateLimit.DefaultCeiling, cfg.RateLimit.MaxCeiling)
		log.Info().Msg("Using in-memory API key store")
	}

	// Rate limiter: Redis when configured, in-memory otherwise.
	var limiter ratelimit.Limiter
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid Redis URL")
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer client.Close()
		limiter = ratelimit.NewRedisLimiter(client, clk)
		log.Info().Msg("Using Redis rate limiter")
	} else {
		limiter = ratelimit.NewMemoryLimiter(clk)
		log.Info().Msg("Using in-memory rate limiter")
	}

	// Endpoint catalog, built once and read-only afterwards.
	reg := registry.New(registry.Info{
		Title:            cfg.Gateway.Title,
		Version:          cfg.Gateway.Version,
		BaseURL:          cfg.Gateway.BaseURL,
		AuthHeader:       cfg.Gateway.AuthHeader,
		DefaultRateLimit: cfg.RateLimit.DefaultCeiling,
		MaxRateLimit:     cfg.RateLimit.MaxCeiling,
	})
	dataPlane := catalog.NewSeededStore(clk)
	catalog.RegisterRoutes(reg, dataPlane)

	var opts []gateway.Option
	if cfg.Gateway.BreakerEnabled {
		opts = append(opts, gateway.WithBreaker(gateway.NewBreakerManager(nil)))
	}

	gw := gateway.New(clk, keys, reg, limiter, telemetry.NewRecorder(), opts...)

	if cfg.Server.Env == "development" {
		issueDemoKey(ctx, keys)
	}

	srv := server.NewPublicServer(cfg, gw, keys)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("base_url", cfg.Gateway.BaseURL).
			Msg("Gateway listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(cfg.Monitoring.PrometheusPort)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().
		Str("signal", sig.String()).
		Msg("Shutdown signal received, gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}

// issueDemoKey provisions a read-only demo key for local development and
// logs the token. Production keys come through the admin surface.
func issueDemoKey(ctx context.Context, keys apikey.Store) {
	result, err := keys.Issue(ctx, apikey.IssueRequest{
		Name: "demo",
		Permissions: []models.Permission{
			{Resource: "walkers", Actions: []models.Action{models.ActionRead}},
			{Resource: "services", Actions: []models.Action{models.ActionRead}},
		},
		RateCeiling: 100,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to issue demo key")
		return
	}
	log.Info().
		Str("token", result.Token).
		Str("key_id", result.Key.ID.String()).
		Msg("Issued development demo key")
}

func startMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.Handler())

	metricsServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info().
		Int("port", port).
		Msg("Prometheus metrics server listening")

	if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("Metrics server error")
	}
}
