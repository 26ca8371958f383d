package infra

import (
	"time"

	"admission-gateway/internal/logging"

	"github.com/rs/zerolog"
)

// deps agrupa o que toda folha precisa do ambiente: relógio e logger.
type deps struct {
	now func() time.Time
	log zerolog.Logger
}

// Option configura relógio/logger de qualquer folha deste pacote.
type Option func(*deps)

// WithClock injeta o relógio. Usado nos testes para controlar janelas.
func WithClock(now func() time.Time) Option {
	return func(d *deps) {
		if now != nil {
			d.now = now
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(d *deps) { d.log = l }
}

func newDeps(component string, opts []Option) deps {
	d := deps{now: time.Now, log: logging.Component(component)}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
