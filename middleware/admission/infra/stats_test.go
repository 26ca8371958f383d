package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"admission-gateway/middleware/admission/domain"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/require"
)

func TestMemoryStatsStore_CountsByVerdictAndRoute(t *testing.T) {
	s := NewMemoryStatsStore(WithTrackClients(true))
	ctx := context.Background()
	c := domain.MustParseClientID("198.51.100.20")

	require.NoError(t, s.Record(ctx, domain.StatsEvent{Client: c, Verdict: domain.Admit, Method: "POST", Path: "/twitch/eventsub"}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Client: c, Verdict: domain.Admit, Method: "POST", Path: "/twitch/eventsub"}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Client: c, Verdict: domain.RejectScan, Method: "GET", Path: "/wp-admin"}))

	require.Equal(t, Counters{"admit": 2, "scan": 1}, s.Total())
	require.Equal(t, int64(2), s.ByRoute()["POST /twitch/eventsub"]["admit"])
	require.Equal(t, int64(1), s.ByClient()["198.51.100.20"]["scan"])
}

func TestMemoryStatsStore_SnapshotsAreCopies(t *testing.T) {
	s := NewMemoryStatsStore()
	_ = s.Record(context.Background(), domain.StatsEvent{Verdict: domain.Admit})

	snap := s.Total()
	snap["admit"] = 99
	require.Equal(t, int64(1), s.Total()["admit"])
	require.Empty(t, s.ByClient(), "clients are not tracked by default")
}

type failingStats struct{ err error }

func (f failingStats) Record(context.Context, domain.StatsEvent) error { return f.err }

func TestMultiStats_FansOutAndJoinsErrors(t *testing.T) {
	mem := NewMemoryStatsStore()
	boom := errors.New("boom")
	m := MultiStats{failingStats{err: boom}, nil, mem}

	err := m.Record(context.Background(), domain.StatsEvent{Verdict: domain.RejectBurst})
	require.ErrorIs(t, err, boom)
	require.Equal(t, int64(1), mem.Total()["burst"], "later stores still receive the event")
}

func TestRedisStatsStore_BreakerOpensWhenRedisIsDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	s := NewRedisStatsStore(rdb, WithStatsBreaker(2, time.Minute))
	ctx := context.Background()
	ev := domain.StatsEvent{Verdict: domain.Admit, Method: "GET", Path: "/health"}

	require.Error(t, s.Record(ctx, ev))
	require.Error(t, s.Record(ctx, ev))
	require.Equal(t, gobreaker.StateOpen, s.BreakerState())

	err := s.Record(ctx, ev)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestRedisStatsStore_NilClientIsNoop(t *testing.T) {
	var s *RedisStatsStore
	require.NoError(t, s.Record(context.Background(), domain.StatsEvent{}))
}
