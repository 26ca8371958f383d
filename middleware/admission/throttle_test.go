package admission

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"admission-gateway/middleware/admission/infra"
)

func TestThrottleMiddleware_AllowsThenRejectsSameClient(t *testing.T) {
	store := infra.NewThrottleStore(0.02, 1)

	calls := 0
	h := ThrottleMiddleware(ThrottleOptions{
		Store:      store,
		RetryAfter: 1 * time.Second,
	})(okHandler(&calls))

	r1 := httptest.NewRequest(http.MethodGet, "http://example/showTela", nil)
	r1.Header.Set("X-Forwarded-For", "10.0.0.1")
	w1 := httptest.NewRecorder()
	h.ServeHTTP(w1, r1)
	if w1.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w1.Code)
	}
	if got := w1.Header().Get("X-RateLimit-Limit"); got != "1" {
		t.Fatalf("expected X-RateLimit-Limit=1, got %q", got)
	}
	if got := w1.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("expected X-RateLimit-Remaining=0, got %q", got)
	}

	// burst=1 e rps bem baixo
	r2 := httptest.NewRequest(http.MethodGet, "http://example/showTela", nil)
	r2.Header.Set("X-Forwarded-For", "10.0.0.1")
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, r2)
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w2.Code)
	}
	if got := w2.Header().Get("Retry-After"); got == "" {
		t.Fatalf("expected Retry-After header to be set")
	}
	if got := w2.Header().Get("X-RateLimit-Reset"); got == "" || got == "0" {
		t.Fatalf("expected positive X-RateLimit-Reset, got %q", got)
	}

	if calls != 1 {
		t.Fatalf("expected next handler to be called once, got %d", calls)
	}
}

func TestThrottleMiddleware_ClientsAreIndependent(t *testing.T) {
	store := infra.NewThrottleStore(0.02, 1)
	calls := 0
	h := ThrottleMiddleware(ThrottleOptions{Store: store})(okHandler(&calls))

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
		r.Header.Set("X-Forwarded-For", ip)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", ip, w.Code)
		}
	}
}

func TestThrottleMiddleware_RetryAfterCoversReset(t *testing.T) {
	// rps=0.5 => próximo token em 2s, maior que o RetryAfter configurado
	store := infra.NewThrottleStore(0.5, 1)
	calls := 0
	h := ThrottleMiddleware(ThrottleOptions{Store: store, RetryAfter: 1 * time.Second})(okHandler(&calls))

	var last *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
		r.Header.Set("X-Forwarded-For", "10.0.0.1")
		last = httptest.NewRecorder()
		h.ServeHTTP(last, r)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", last.Code)
	}
	if got := strings.TrimSpace(last.Header().Get("Retry-After")); got != "2" {
		t.Fatalf("expected Retry-After=2, got %q", got)
	}
}

func TestThrottleMiddleware_NilStoreIsPassthrough(t *testing.T) {
	calls := 0
	h := ThrottleMiddleware(ThrottleOptions{})(okHandler(&calls))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/", nil))
	if w.Code != http.StatusOK || calls != 1 {
		t.Fatalf("expected passthrough, got code=%d calls=%d", w.Code, calls)
	}
	if got := w.Header().Get("X-RateLimit-Limit"); got != "" {
		t.Fatalf("expected no rate limit headers, got %q", got)
	}
}
