package domain

import "time"

// Quota é a resposta do limitador por cliente.
//
// A implementação pode ser token-bucket, leaky-bucket, etc.
// A camada de infra usa golang.org/x/time/rate.
type Quota struct {
	Allowed   bool
	Limit     int
	Remaining int
	// Reset é o tempo até o próximo token ficar disponível.
	Reset time.Duration
	// RetryAfter é o valor de Retry-After quando bloquear. Se 0, não há recomendação.
	RetryAfter time.Duration
}

// QuotaStore consome uma unidade da cota do cliente.
// A implementação pode manter cache, TTL, etc.
type QuotaStore interface {
	Take(ClientID) Quota
}
