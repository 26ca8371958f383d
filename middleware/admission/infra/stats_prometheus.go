package infra

import (
	"context"

	"admission-gateway/internal/metrics"
	"admission-gateway/middleware/admission/domain"
)

// PrometheusStats publica decisões e relatórios de manutenção como métricas.
type PrometheusStats struct{}

var (
	_ domain.StatsStore      = PrometheusStats{}
	_ domain.MaintenanceSink = PrometheusStats{}
)

func (PrometheusStats) Record(_ context.Context, ev domain.StatsEvent) error {
	metrics.AdmissionDecisions.WithLabelValues(ev.Verdict.String()).Inc()
	return nil
}

func (PrometheusStats) Maintenance(r domain.MaintenanceReport) {
	metrics.MaintenanceRuns.Inc()
	metrics.SetUnderAttack(r.UnderAttack)
	metrics.GlobalRate.Set(r.GlobalRate)
	metrics.BlacklistSize.Set(float64(r.BlacklistSize))
}
