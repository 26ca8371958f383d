package admission

import (
	"net/http"

	"admission-gateway/middleware/admission/application"
	"admission-gateway/middleware/admission/infra"

	"github.com/goccy/go-json"
)

type statsResponse struct {
	UnderAttack bool                      `json:"under_attack"`
	Total       infra.Counters            `json:"total"`
	ByRoute     map[string]infra.Counters `json:"by_route"`
	ByClient    map[string]infra.Counters `json:"by_client,omitempty"`
}

// StatsHandler expõe o snapshot do MemoryStatsStore em JSON. ctrl é
// opcional; sem ele under_attack sai sempre false.
func StatsHandler(store *infra.MemoryStatsStore, ctrl *application.Controller) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := statsResponse{
			Total:   store.Total(),
			ByRoute: store.ByRoute(),
		}
		if byClient := store.ByClient(); len(byClient) > 0 {
			resp.ByClient = byClient
		}
		if ctrl != nil {
			resp.UnderAttack = ctrl.UnderAttack()
		}

		body, err := json.Marshal(resp)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(body)
	})
}
