package application

import (
	"time"

	"admission-gateway/middleware/admission/domain"
)

// ThrottleService concentra a regra de aplicação do limite por cliente.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma cota.
type ThrottleService struct {
	Store      domain.QuotaStore
	RetryAfter time.Duration
}

func (s ThrottleService) Decide(client domain.ClientID) domain.Quota {
	if s.Store == nil {
		return domain.Quota{Allowed: true}
	}
	if s.RetryAfter <= 0 {
		s.RetryAfter = 1 * time.Second
	}

	q := s.Store.Take(client)
	if q.Allowed {
		q.RetryAfter = 0
		return q
	}
	// sugestão mínima: o próprio reset, se for maior que o padrão
	q.RetryAfter = max(s.RetryAfter, q.Reset)
	return q
}
