package admission

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"admission-gateway/middleware/admission/infra"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestStatsHandler_ServesSnapshot(t *testing.T) {
	hs := newHarness(t, 1000, nil)
	stats := infra.NewMemoryStatsStore()
	calls := 0
	h := Middleware(Options{Controller: hs.ctrl, Stats: stats})(okHandler(&calls))
	hs.do(h, "203.0.113.40", "/webhook")
	hs.do(h, "", "/webhook")

	w := httptest.NewRecorder()
	StatsHandler(stats, hs.ctrl).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admission/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got statsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.False(t, got.UnderAttack)
	require.Equal(t, int64(1), got.Total["admit"])
	require.Equal(t, int64(1), got.Total["malformed"])
	require.Equal(t, int64(1), got.ByRoute["GET /webhook"]["admit"])
	require.Nil(t, got.ByClient)
}
