// Package metrics expõe as métricas Prometheus da camada de admissão.
//
// Métricas:
//   - admission_decisions_total{verdict}: decisões por veredicto (counter)
//   - admission_under_attack: 1 quando o limitador global está em modo ataque (gauge)
//   - admission_global_rate: última taxa global calculada, req/s (gauge)
//   - admission_blacklist_size: entradas ativas na blacklist (gauge)
//   - admission_maintenance_runs_total: ciclos de manutenção executados (counter)
//   - admission_stats_breaker_state{name}: estado do circuit breaker de stats (0=closed, 1=half-open, 2=open)
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AdmissionDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_decisions_total",
			Help: "Admission decisions by verdict",
		},
		[]string{"verdict"},
	)

	UnderAttack = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "admission_under_attack",
			Help: "1 while the global limiter is in attack mode",
		},
	)

	GlobalRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "admission_global_rate",
			Help: "Last computed aggregate request rate (req/s)",
		},
	)

	BlacklistSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "admission_blacklist_size",
			Help: "Active blacklist entries after the last maintenance cycle",
		},
	)

	MaintenanceRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "admission_maintenance_runs_total",
			Help: "Completed maintenance cycles",
		},
	)

	StatsBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "admission_stats_breaker_state",
			Help: "Stats store circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// SetUnderAttack grava o flag de ataque como 0/1.
func SetUnderAttack(v bool) { UnderAttack.Set(boolToFloat(v)) }
