package domain

import (
	"context"
	"time"
)

// StatsEvent representa uma decisão de admissão.
//
// Method/Path são strings genéricas, sem dependência de net/http.
//
// Observação: cuidado com cardinalidade (ex.: salvar Client/Path sem controle
// pode explodir o número de séries/chaves em Redis/Prometheus).
type StatsEvent struct {
	Client  ClientID
	Verdict Verdict

	Method string
	Path   string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de decisão.
//
// O middleware trata erro como best-effort (não derruba request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

// MaintenanceReport é o retrato produzido a cada ciclo de manutenção.
type MaintenanceReport struct {
	At               time.Time
	BlacklistRemoved int
	BlacklistSize    int
	Detector         DetectorCleanup
	GlobalRate       float64
	UnderAttack      bool
}

// MaintenanceSink recebe cada MaintenanceReport (métricas, logs externos...).
type MaintenanceSink interface {
	Maintenance(MaintenanceReport)
}
