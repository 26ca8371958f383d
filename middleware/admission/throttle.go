package admission

import (
	"math"
	"net/http"
	"time"

	"admission-gateway/middleware/admission/application"
	"admission-gateway/middleware/admission/domain"
)

type ThrottleOptions struct {
	Store           domain.QuotaStore
	Stats           domain.StatsStore
	ClientFn        ClientFunc
	TrustRemoteAddr bool
	RetryAfter      time.Duration
}

// ThrottleMiddleware aplica o token bucket por cliente. Store nil desliga o
// middleware. Um cliente sem IP válido passa direto; quem rejeita identidade
// é o Middleware de admissão.
func ThrottleMiddleware(opts ThrottleOptions) func(next http.Handler) http.Handler {
	if opts.Store == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.ClientFn == nil {
		opts.ClientFn = DefaultClientFunc(opts.TrustRemoteAddr)
	}

	svc := application.ThrottleService{
		Store:      opts.Store,
		RetryAfter: opts.RetryAfter,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var client domain.ClientID
			state, inside := admittedFrom(r.Context())
			if inside {
				client = state.client
			} else {
				c, err := domain.ParseClientID(opts.ClientFn(r))
				if err != nil {
					next.ServeHTTP(w, r)
					return
				}
				client = c
			}

			q := svc.Decide(client)
			h := w.Header()
			h.Set("X-RateLimit-Limit", formatInt(q.Limit))
			h.Set("X-RateLimit-Remaining", formatInt(q.Remaining))
			h.Set("X-RateLimit-Reset", formatInt(ceilSeconds(q.Reset)))

			if !q.Allowed {
				// dentro da admissão quem registra é o Middleware
				if inside {
					state.verdict = domain.RejectThrottled
				} else {
					record(r, opts.Stats, client, domain.RejectThrottled)
				}
				h.Set("Retry-After", formatInt(ceilSeconds(q.RetryAfter)))
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
