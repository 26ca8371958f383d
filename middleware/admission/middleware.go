package admission

import (
	"net/http"
	"time"

	"admission-gateway/middleware/admission/application"
	"admission-gateway/middleware/admission/domain"
)

type Options struct {
	Controller *application.Controller
	Stats      domain.StatsStore
	ClientFn   ClientFunc
	// TrustRemoteAddr só vale quando ClientFn é nil.
	TrustRemoteAddr bool
}

// Textos fixos de rejeição. Não expõem contagens nem limiares.
var rejections = map[domain.Verdict]struct {
	status int
	body   string
}{
	domain.RejectMalformed:   {http.StatusBadRequest, "Invalid IP address"},
	domain.RejectBlacklisted: {http.StatusForbidden, "IP address blocked due to suspicious activity"},
	domain.RejectScan:        {http.StatusForbidden, "Too many unique requests - scanning detected"},
	domain.RejectBurst:       {http.StatusForbidden, "Request rate abnormal - automated tools detected"},
	domain.RejectOverload:    {http.StatusServiceUnavailable, "Server is currently under high load. Please try again later."},
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.Controller == nil {
		panic("admission: Options.Controller is required")
	}
	if opts.ClientFn == nil {
		opts.ClientFn = DefaultClientFunc(opts.TrustRemoteAddr)
	}
	ctrl := opts.Controller

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dec := ctrl.Check(opts.ClientFn(r), r.URL.Path)

			if !dec.Verdict.Allowed() {
				record(r, opts.Stats, dec.Client, dec.Verdict)
				rej := rejections[dec.Verdict]
				http.Error(w, rej.body, rej.status)
				return
			}

			// o registro da admissão espera o downstream: o throttle
			// interno ainda pode trocar o veredicto
			state := &admitted{client: dec.Client, verdict: dec.Verdict}
			rec := &statusRecorder{ResponseWriter: w, underAttack: dec.UnderAttack}
			panicked := true
			defer func() {
				record(r, opts.Stats, state.client, state.verdict)
				// pânico sobe para o net/http depois de contabilizado
				if panicked {
					ctrl.Observe(dec.Client, domain.OutcomeAborted)
					return
				}
				rec.finish()
				ctrl.Observe(dec.Client, rec.outcome(r))
			}()

			next.ServeHTTP(rec, r.WithContext(withAdmitted(r.Context(), state)))
			panicked = false
		})
	}
}

func record(r *http.Request, stats domain.StatsStore, c domain.ClientID, v domain.Verdict) {
	if stats == nil {
		return
	}
	_ = stats.Record(r.Context(), domain.StatsEvent{
		Client:  c,
		Verdict: v,
		Method:  r.Method,
		Path:    r.URL.Path,
		At:      time.Now(),
	})
}
