package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applogger "StockCast/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEcho(t *testing.T, buf *bytes.Buffer, reg *prometheus.Registry) *echo.Echo {
	t.Helper()
	l := applogger.NewWithWriter(buf, zerolog.DebugLevel)
	e := echo.New()
	e.Use(Recover(l), Metrics(reg), RequestLogging(l, 0))
	e.GET("/ok/:id", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/teapot", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "short and stout") })
	e.GET("/boom", func(c echo.Context) error { panic("kaboom") })
	return e
}

func serve(e *echo.Echo, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestMiddlewareChain(t *testing.T) {
	var buf bytes.Buffer
	reg := prometheus.NewRegistry()
	e := newTestEcho(t, &buf, reg)

	assert.Equal(t, http.StatusOK, serve(e, "/ok/1").Code)
	assert.Equal(t, http.StatusOK, serve(e, "/ok/2").Code)
	assert.Equal(t, http.StatusTeapot, serve(e, "/teapot").Code)

	// both ids share the route template label
	expected := `
# HELP stockcast_http_requests_total Total number of HTTP requests
# TYPE stockcast_http_requests_total counter
stockcast_http_requests_total{method="GET",route="/ok/:id",status="200"} 2
stockcast_http_requests_total{method="GET",route="/teapot",status="418"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "stockcast_http_requests_total"))
	assert.Contains(t, buf.String(), `"route":"/ok/:id"`)
	assert.Contains(t, buf.String(), `"status":418`)
}

func TestRecoverReturns500(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEcho(t, &buf, prometheus.NewRegistry())

	rec := serve(e, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
	assert.Contains(t, buf.String(), "http handler panic")
	assert.Contains(t, buf.String(), "kaboom")
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "1xx", statusClass(101))
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "3xx", statusClass(304))
	assert.Equal(t, "4xx", statusClass(422))
	assert.Equal(t, "5xx", statusClass(503))
}
