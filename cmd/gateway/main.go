package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admission-gateway/internal/config"
	"admission-gateway/internal/logging"
	"admission-gateway/middleware/admission"
	"admission-gateway/middleware/admission/application"
	"admission-gateway/middleware/admission/domain"
	"admission-gateway/middleware/admission/infra"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	log := logging.Component("gateway")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config error")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	log = logging.Component("gateway")

	target, err := url.Parse(cfg.Server.UpstreamURL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid UPSTREAM_URL")
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("proxy error")
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	memStats := infra.NewMemoryStatsStore(infra.WithTrackClients(cfg.Stats.TrackClients))
	stats := infra.MultiStats{memStats, infra.PrometheusStats{}}

	if cfg.Stats.RedisEnabled {
		rdb, err := openRedis(ctx, cfg.Stats)
		if err != nil {
			log.Fatal().Err(err).Msg("redis stats")
		}
		defer func() { _ = rdb.Close() }()

		stats = append(stats, infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.Stats.Prefix),
			infra.WithStatsTTL(cfg.Stats.TTL),
			infra.WithStatsBucket(cfg.Stats.Bucket),
			infra.WithStatsTrackClients(cfg.Stats.TrackClients),
		))
	}

	ctrl, err := newController(cfg.Admission)
	if err != nil {
		log.Fatal().Err(err).Msg("admission controller")
	}
	maintenanceDone := ctrl.StartMaintenance(ctx, cfg.Admission.MaintenanceInterval())

	var quotas domain.QuotaStore
	if cfg.Throttle.Enabled {
		store := infra.NewThrottleStore(
			cfg.Throttle.RPS,
			cfg.Throttle.Burst,
			infra.WithIdleTTL(cfg.Throttle.IdleTTL),
			infra.WithCleanupEvery(cfg.Throttle.CleanupEvery),
		)
		store.StartJanitor(ctx)
		quotas = store
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// fora da cadeia de admissão
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/admission/stats", admission.StatsHandler(memStats, ctrl))

	r.Group(func(r chi.Router) {
		r.Use(admission.Middleware(admission.Options{
			Controller:      ctrl,
			Stats:           stats,
			TrustRemoteAddr: cfg.Admission.TrustRemoteAddr,
		}))
		r.Use(admission.ThrottleMiddleware(admission.ThrottleOptions{
			Store:           quotas,
			Stats:           stats,
			TrustRemoteAddr: cfg.Admission.TrustRemoteAddr,
			RetryAfter:      cfg.Throttle.RetryAfter,
		}))
		r.Handle("/*", proxy)
	})

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	logStartup(log, cfg, target)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server error")
		cancel()
		<-maintenanceDone
		os.Exit(1)
	}
	<-maintenanceDone
}

func newController(a config.AdmissionConfig) (*application.Controller, error) {
	whitelist, err := infra.ParseWhitelist(a.Whitelist)
	if err != nil {
		return nil, fmt.Errorf("whitelist: %w", err)
	}
	return application.NewController(application.Components{
		Limiter:   infra.NewGlobalRateLimiter(a.GlobalMaxRequests, a.GlobalWindow()),
		Blacklist: infra.NewIPBlacklist(a.BlockDuration()),
		Detector:  infra.NewActivityDetector(a.Detector()),
		Whitelist: whitelist,
		Sink:      infra.PrometheusStats{},
	})
}

func openRedis(ctx context.Context, s config.StatsConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     s.RedisAddr,
		Password: s.RedisPassword,
		DB:       s.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping %s: %w", s.RedisAddr, err)
	}
	return rdb, nil
}

func logStartup(log zerolog.Logger, cfg *config.Config, target *url.URL) {
	a := cfg.Admission
	log.Info().Str("addr", cfg.Server.ListenAddr).Str("upstream", target.String()).Msg("gateway listening")
	log.Info().
		Int("global_max_requests", a.GlobalMaxRequests).
		Dur("global_window", a.GlobalWindow()).
		Dur("block_duration", a.BlockDuration()).
		Int("max_failures", a.MaxFailures).
		Int("max_path_diversity", a.MaxPathDiversity).
		Dur("maintenance_interval", a.MaintenanceInterval()).
		Bool("trust_remote_addr", a.TrustRemoteAddr).
		Strs("whitelist", a.Whitelist).
		Msg("admission")
	log.Info().
		Bool("enabled", cfg.Throttle.Enabled).
		Float64("rps", cfg.Throttle.RPS).
		Int("burst", cfg.Throttle.Burst).
		Msg("throttle")
	log.Info().
		Bool("redis", cfg.Stats.RedisEnabled).
		Str("redis_addr", cfg.Stats.RedisAddr).
		Str("bucket", cfg.Stats.Bucket).
		Bool("track_clients", cfg.Stats.TrackClients).
		Msg("stats")
}
