package infra

import (
	"sync"
	"time"

	"admission-gateway/middleware/admission/domain"
)

// IPBlacklist bloqueia clientes por um tempo fixo.
//
// Expiração é preguiçosa na leitura (IsBlacklisted) e ansiosa no Cleanup,
// que pega clientes que nunca mais voltam.
type IPBlacklist struct {
	deps
	blockDuration time.Duration

	mu      sync.Mutex
	entries map[domain.ClientID]time.Time
}

var _ domain.Blacklist = (*IPBlacklist)(nil)

func NewIPBlacklist(blockDuration time.Duration, opts ...Option) *IPBlacklist {
	return &IPBlacklist{
		deps:          newDeps("blacklist", opts),
		blockDuration: blockDuration,
		entries:       make(map[domain.ClientID]time.Time),
	}
}

func (b *IPBlacklist) IsBlacklisted(c domain.ClientID) bool {
	now := b.now()

	b.mu.Lock()
	defer b.mu.Unlock()

	blockedAt, ok := b.entries[c]
	if !ok {
		return false
	}
	if now.Sub(blockedAt) < b.blockDuration {
		return true
	}
	delete(b.entries, c)
	return false
}

// Blacklist sobrescreve incondicionalmente: bloquear de novo reinicia o relógio.
func (b *IPBlacklist) Blacklist(c domain.ClientID) {
	now := b.now()

	b.mu.Lock()
	b.entries[c] = now
	b.mu.Unlock()

	b.log.Warn().
		Str("client", c.String()).
		Dur("block_duration", b.blockDuration).
		Msg("client blacklisted for suspicious activity")
}

func (b *IPBlacklist) Cleanup() int {
	now := b.now()

	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for c, blockedAt := range b.entries {
		if now.Sub(blockedAt) >= b.blockDuration {
			delete(b.entries, c)
			removed++
		}
	}
	return removed
}

func (b *IPBlacklist) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
