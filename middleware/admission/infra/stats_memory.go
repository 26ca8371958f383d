package infra

import (
	"context"
	"sync"

	"admission-gateway/middleware/admission/domain"
)

// Counters conta decisões por veredicto ("admit", "scan", ...).
type Counters map[string]int64

func (c Counters) clone() Counters {
	out := make(Counters, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// MemoryStatsStore é uma implementação simples em memória.
// Alimenta o endpoint /admission/stats.
//
// Não faz expiração; por cliente só com WithTrackClients (cardinalidade).
type MemoryStatsStore struct {
	mu       sync.Mutex
	total    Counters
	byRoute  map[string]Counters
	byClient map[string]Counters

	trackClients bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackClients(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackClients = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		total:    make(Counters),
		byRoute:  make(map[string]Counters),
		byClient: make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func bump(m map[string]Counters, key, verdict string) {
	c, ok := m[key]
	if !ok {
		c = make(Counters)
		m[key] = c
	}
	c[verdict]++
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	verdict := ev.Verdict.String()
	route := ev.Method + " " + ev.Path

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total[verdict]++
	bump(s.byRoute, route, verdict)
	if s.trackClients && ev.Client.IsValid() {
		bump(s.byClient, ev.Client.String(), verdict)
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total.clone()
}

func (s *MemoryStatsStore) ByRoute() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.byRoute)
}

func (s *MemoryStatsStore) ByClient() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.byClient)
}

func cloneAll(m map[string]Counters) map[string]Counters {
	out := make(map[string]Counters, len(m))
	for k, v := range m {
		out[k] = v.clone()
	}
	return out
}
