package infra

import (
	"context"
	"math"
	"sync"
	"time"

	"admission-gateway/middleware/admission/domain"

	"golang.org/x/time/rate"
)

// ThrottleStore é um token bucket (x/time/rate) por cliente, com cache por
// chave e limpeza periódica de clientes ociosos.
type ThrottleStore struct {
	deps

	mu           sync.Mutex
	entries      map[domain.ClientID]*throttleEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type throttleEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

var _ domain.QuotaStore = (*ThrottleStore)(nil)

type ThrottleOption func(*ThrottleStore)

func WithIdleTTL(d time.Duration) ThrottleOption {
	return func(s *ThrottleStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) ThrottleOption {
	return func(s *ThrottleStore) { s.cleanupEvery = d }
}

// WithThrottleClock injeta o relógio usado para consumir tokens.
func WithThrottleClock(now func() time.Time) ThrottleOption {
	return func(s *ThrottleStore) { WithClock(now)(&s.deps) }
}

func NewThrottleStore(rps float64, burst int, opts ...ThrottleOption) *ThrottleStore {
	s := &ThrottleStore{
		deps:         newDeps("throttle", nil),
		entries:      make(map[domain.ClientID]*throttleEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ThrottleStore) RPS() float64                { return float64(s.rps) }
func (s *ThrottleStore) Burst() int                  { return s.burst }
func (s *ThrottleStore) CleanupEvery() time.Duration { return s.cleanupEvery }

func (s *ThrottleStore) limiter(c domain.ClientID, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[c]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(s.rps, s.burst)
	s.entries[c] = &throttleEntry{lim: lim, lastSeen: now}
	return lim
}

// Take implementa domain.QuotaStore: consome um token do cliente.
func (s *ThrottleStore) Take(c domain.ClientID) domain.Quota {
	now := s.now()
	lim := s.limiter(c, now)

	allowed := lim.AllowN(now, 1)
	tokens := lim.TokensAt(now)

	q := domain.Quota{
		Allowed:   allowed,
		Limit:     s.burst,
		Remaining: max(0, int(math.Floor(tokens))),
	}
	if tokens < 1 && s.rps > 0 {
		wait := (1 - tokens) / float64(s.rps)
		q.Reset = time.Duration(math.Ceil(wait * float64(time.Second)))
	}
	return q
}

func (s *ThrottleStore) Cleanup() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

func (s *ThrottleStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// StartJanitor inicia uma goroutine que limpa clientes inativos periodicamente.
// Pare cancelando o contexto.
func (s *ThrottleStore) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := s.Cleanup(); n > 0 {
					s.log.Debug().Int("removed", n).Msg("throttle janitor pass")
				}
			}
		}
	}()
}
