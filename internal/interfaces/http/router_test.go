package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkIP-Intelligence/internal/interfaces/http/handlers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouterMountsProbesAndMetrics(t *testing.T) {
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("# metrics"))
	})
	r := NewRouter(RouterConfig{
		Health:         handlers.NewHealthHandler(nil),
		MetricsHandler: metricsHandler,
		Logger:         logging.NewNopLogger(),
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# metrics")
}

func TestRouterStampsRequestID(t *testing.T) {
	r := NewRouter(RouterConfig{
		Health: handlers.NewHealthHandler(nil),
		Logger: logging.NewNopLogger(),
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouterSkipsUnconfiguredGroups(t *testing.T) {
	r := NewRouter(RouterConfig{Logger: logging.NewNopLogger()})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cases/O-0959-23", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
