package application

import (
	"context"
	"fmt"
	"time"

	"admission-gateway/internal/logging"
	"admission-gateway/middleware/admission/domain"

	"github.com/rs/zerolog"
)

// Components são as dependências do Controller. Limiter, Blacklist e
// Detector são obrigatórios; Whitelist nil não isenta ninguém.
type Components struct {
	Limiter   domain.GlobalLimiter
	Blacklist domain.Blacklist
	Detector  domain.ActivityDetector
	Whitelist domain.Whitelist
	// Sink recebe cada MaintenanceReport (opcional).
	Sink   domain.MaintenanceSink
	Logger *zerolog.Logger
	Now    func() time.Time
}

// Controller orquestra as folhas numa ordem fixa, primeira rejeição vence:
//
//	identidade -> blacklist -> diversidade de caminhos -> rajada -> volume global
//
// Não há lock próprio: cada folha protege seu estado e a ordem entre elas é
// dada pela sequência de chamadas.
type Controller struct {
	limiter   domain.GlobalLimiter
	blacklist domain.Blacklist
	detector  domain.ActivityDetector
	whitelist domain.Whitelist
	sink      domain.MaintenanceSink
	log       zerolog.Logger
	now       func() time.Time
}

func NewController(c Components) (*Controller, error) {
	switch {
	case c.Limiter == nil:
		return nil, fmt.Errorf("%w: global limiter", domain.ErrMissingComponent)
	case c.Blacklist == nil:
		return nil, fmt.Errorf("%w: blacklist", domain.ErrMissingComponent)
	case c.Detector == nil:
		return nil, fmt.Errorf("%w: activity detector", domain.ErrMissingComponent)
	}

	ctrl := &Controller{
		limiter:   c.Limiter,
		blacklist: c.Blacklist,
		detector:  c.Detector,
		whitelist: c.Whitelist,
		sink:      c.Sink,
		now:       c.Now,
	}
	if c.Logger != nil {
		ctrl.log = *c.Logger
	} else {
		ctrl.log = logging.Component("admission")
	}
	if ctrl.now == nil {
		ctrl.now = time.Now
	}
	return ctrl, nil
}

// Check avalia uma requisição que chega. rawClient é o texto extraído do
// header; se não for um IP válido a requisição é rejeitada antes de tocar
// qualquer mapa.
func (c *Controller) Check(rawClient, path string) domain.Decision {
	client, err := domain.ParseClientID(rawClient)
	if err != nil {
		c.log.Debug().Err(err).Msg("rejecting malformed client identity")
		return domain.Decision{Verdict: domain.RejectMalformed}
	}

	if c.blacklist.IsBlacklisted(client) {
		return domain.Decision{Client: client, Verdict: domain.RejectBlacklisted}
	}

	if c.detector.TrackPath(client, path) {
		c.blacklist.Blacklist(client)
		return domain.Decision{Client: client, Verdict: domain.RejectScan}
	}

	if c.detector.TrackTiming(client) {
		c.blacklist.Blacklist(client)
		return domain.Decision{Client: client, Verdict: domain.RejectBurst}
	}

	underAttack := c.limiter.TrackRequest()
	if underAttack && !c.whitelisted(client) {
		return domain.Decision{Client: client, Verdict: domain.RejectOverload, UnderAttack: true}
	}

	return domain.Decision{Client: client, Verdict: domain.Admit, UnderAttack: underAttack}
}

func (c *Controller) whitelisted(client domain.ClientID) bool {
	return c.whitelist != nil && c.whitelist.Contains(client)
}

// Observe registra o resultado de uma requisição admitida, atribuído ao
// cliente capturado na admissão.
func (c *Controller) Observe(client domain.ClientID, outcome domain.Outcome) {
	if !client.IsValid() {
		return
	}
	if !outcome.Failed() {
		c.detector.ResetFailures(client)
		return
	}
	if c.detector.TrackFailure(client) {
		c.blacklist.Blacklist(client)
	}
}

// UnderAttack é o flag global atual, sem contabilizar requisição.
func (c *Controller) UnderAttack() bool { return c.limiter.IsUnderAttack() }

// Maintain roda um ciclo de manutenção: limpa blacklist e detector e
// registra taxa e estado de ataque.
func (c *Controller) Maintain() domain.MaintenanceReport {
	r := domain.MaintenanceReport{At: c.now()}
	r.BlacklistRemoved = c.blacklist.Cleanup()
	r.BlacklistSize = c.blacklist.Len()
	r.Detector = c.detector.Cleanup()
	r.GlobalRate = c.limiter.CurrentRate()
	r.UnderAttack = c.limiter.IsUnderAttack()

	c.log.Info().
		Float64("rate", r.GlobalRate).
		Int("blacklisted", r.BlacklistSize).
		Int("blacklist_expired", r.BlacklistRemoved).
		Int("path_clients_cleared", r.Detector.PathClients).
		Int("timing_clients_dropped", r.Detector.TimingClientsDropped).
		Msg("current global request rate")
	if r.UnderAttack {
		c.log.Warn().Msg("system is currently in attack mode")
	}

	if c.sink != nil {
		c.sink.Maintenance(r)
	}
	return r
}

// StartMaintenance inicia a goroutine de manutenção, independente do
// tráfego. Ela roda até o contexto ser cancelado; o canal devolvido fecha
// quando a goroutine termina.
func (c *Controller) StartMaintenance(ctx context.Context, every time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if every <= 0 {
		close(done)
		return done
	}

	t := time.NewTicker(every)
	go func() {
		defer close(done)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				c.Maintain()
			}
		}
	}()
	return done
}
