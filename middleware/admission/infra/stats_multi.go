package infra

import (
	"context"
	"errors"

	"admission-gateway/middleware/admission/domain"
)

// MultiStats repassa o mesmo evento para vários stores. Todos recebem o
// evento mesmo que algum falhe; os erros voltam juntos.
type MultiStats []domain.StatsStore

func (m MultiStats) Record(ctx context.Context, ev domain.StatsEvent) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
