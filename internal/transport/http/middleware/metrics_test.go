package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ttech-shop/internal/transport/http/middleware"
)

func newMeteredEngine(m *middleware.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(m.Handler())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(m.Exporter()))
	return r
}

func scrape(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestMetrics_CountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newMeteredEngine(middleware.NewMetrics())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	body := scrape(t, r)
	assert.Contains(t, body, `ttech_http_requests_total{method="GET",path="/ping",status="200"} 3`)
	assert.Contains(t, body, "ttech_http_request_duration_seconds")
}

// 两个引擎各自一套 registry：同名 collector 不冲突，计数互不串
func TestMetrics_RegistriesIsolated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r1 := newMeteredEngine(middleware.NewMetrics())
	r2 := newMeteredEngine(middleware.NewMetrics())

	w := httptest.NewRecorder()
	r1.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, scrape(t, r1), `path="/ping"`)
	assert.NotContains(t, scrape(t, r2), `path="/ping"`)
}
