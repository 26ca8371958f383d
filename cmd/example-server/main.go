package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admission-gateway/internal/logging"
	"admission-gateway/middleware/admission"
	"admission-gateway/middleware/admission/application"
	"admission-gateway/middleware/admission/infra"

	"github.com/goccy/go-json"
)

func main() {
	// Exemplo: injetando a admissão diretamente no seu webserver (sem proxy),
	// no formato de um relay de webhooks.
	log := logging.Component("example-server")

	ctrl, err := application.NewController(application.Components{
		Limiter:   infra.NewGlobalRateLimiter(1000, 10*time.Second),
		Blacklist: infra.NewIPBlacklist(30 * time.Minute),
		Detector:  infra.NewActivityDetector(infra.DefaultDetectorConfig()),
		Whitelist: infra.DefaultWhitelist(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("admission controller")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctrl.StartMaintenance(ctx, time.Minute)

	store := infra.NewThrottleStore(5, 10)
	store.StartJanitor(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("POST /twitch/eventsub", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Twitch-Eventsub-Message-Id") == "" {
			http.Error(w, "missing message id", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/user/{id}", userHandler)

	// /health fica fora da admissão
	guarded := http.Handler(mux)
	guarded = admission.ThrottleMiddleware(admission.ThrottleOptions{Store: store, TrustRemoteAddr: true})(guarded)
	guarded = admission.Middleware(admission.Options{Controller: ctrl, TrustRemoteAddr: true})(guarded)

	root := http.NewServeMux()
	root.Handle("GET /health", mux)
	root.Handle("/", guarded)

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("example server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
}

func userHandler(w http.ResponseWriter, r *http.Request) {
	body, err := json.Marshal(map[string]string{"id": r.PathValue("id")})
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}
