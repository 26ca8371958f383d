package infra

import (
	"sync"
	"time"

	"admission-gateway/middleware/admission/domain"
)

// attackRatio é a fração da capacidade (R/W) acima da qual o rollover liga o modo ataque.
const attackRatio = 0.8

// GlobalRateLimiter acompanha o volume agregado de requisições de todos os clientes.
//
// Duas regras:
//   - teto duro: passar de maxRequests dentro da janela liga o modo ataque na hora;
//   - taxa da janela: no rollover, taxa > 80% de R/W mantém (ou liga) o modo ataque,
//     caso contrário desliga.
//
// O flag só é recalculado no rollover, nunca no meio da janela.
type GlobalRateLimiter struct {
	deps
	maxRequests int

	mu          sync.Mutex
	win         domain.Window
	rate        float64
	underAttack bool
}

var _ domain.GlobalLimiter = (*GlobalRateLimiter)(nil)

func NewGlobalRateLimiter(maxRequests int, window time.Duration, opts ...Option) *GlobalRateLimiter {
	g := &GlobalRateLimiter{
		deps:        newDeps("global_limiter", opts),
		maxRequests: maxRequests,
	}
	g.win = domain.NewWindow(g.now(), window)
	return g
}

func (g *GlobalRateLimiter) threshold() float64 {
	return float64(g.maxRequests) / g.win.Duration.Seconds() * attackRatio
}

// TrackRequest contabiliza uma requisição e devolve o flag de ataque.
func (g *GlobalRateLimiter) TrackRequest() bool {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if rate, rolled := g.win.MaybeRollover(now); rolled {
		g.win.Add()
		g.rate = rate
		g.underAttack = rate > g.threshold()
		if g.underAttack {
			g.log.Warn().Float64("rate", rate).Msg("possible DDoS attack detected")
		}
		return g.underAttack
	}

	if n := g.win.Add(); n > g.maxRequests {
		if !g.underAttack {
			g.log.Warn().
				Int("count", n).
				Dur("elapsed", now.Sub(g.win.Start)).
				Msg("global rate limit exceeded")
		}
		g.underAttack = true
		return true
	}
	return g.underAttack
}

func (g *GlobalRateLimiter) IsUnderAttack() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.underAttack
}

func (g *GlobalRateLimiter) CurrentRate() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rate
}
