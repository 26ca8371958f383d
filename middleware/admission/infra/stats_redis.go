package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"admission-gateway/internal/logging"
	"admission-gateway/internal/metrics"
	"admission-gateway/middleware/admission/domain"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
)

// RedisStatsStore grava contadores de decisão em hashes do Redis.
//
// As escritas passam por um circuit breaker: com o Redis fora, Record falha
// rápido com gobreaker.ErrOpenState em vez de pagar timeout no caminho da
// requisição.
type RedisStatsStore struct {
	rdb *redis.Client

	prefix string
	// ttl aplica apenas em chaves de série temporal / por cliente.
	// total é cumulativo e não expira.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackClients bool

	breakerThreshold uint32
	breakerTimeout   time.Duration
	cb               *gobreaker.CircuitBreaker[[]redis.Cmder]
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackClients(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackClients = track }
}

// WithStatsBreaker: falhas consecutivas para abrir e tempo aberto antes do half-open.
func WithStatsBreaker(consecutiveFailures uint32, openFor time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.breakerThreshold = consecutiveFailures
		s.breakerTimeout = openFor
	}
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:              rdb,
		prefix:           "admission:stats",
		ttl:              24 * time.Hour,
		bucket:           "minute",
		breakerThreshold: 5,
		breakerTimeout:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	log := logging.Component("redis_stats")
	name := "redis-stats"
	metrics.StatsBreakerState.WithLabelValues(name).Set(0)

	s.cb = gobreaker.NewCircuitBreaker[[]redis.Cmder](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.breakerThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("stats breaker state change")
			metrics.StatsBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
	return s
}

// BreakerState expõe o estado do breaker (closed/half-open/open).
func (s *RedisStatsStore) BreakerState() gobreaker.State { return s.cb.State() }

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := ev.Verdict.String()
	totalKey := s.prefix + ":total"

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, totalKey, field, 1)

	if s.bucket == "minute" {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	routeField := strings.TrimSpace(strings.TrimSpace(ev.Method) + " " + strings.TrimSpace(ev.Path))
	if routeField != "" {
		pipe.HIncrBy(ctx, s.prefix+":route", routeField+":"+field, 1)
	}

	if s.trackClients && ev.Client.IsValid() {
		clientKey := s.prefix + ":client:" + ev.Client.String()
		pipe.HIncrBy(ctx, clientKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, clientKey, s.ttl)
		}
	}

	_, err := s.cb.Execute(func() ([]redis.Cmder, error) {
		return pipe.Exec(ctx)
	})
	return err
}
