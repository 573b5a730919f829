package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ping", func(c echo.Context) error { return SuccessResponse(c, "pong") })
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(body)
}

func TestServerServesRoutesAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := NewServer(pingHandler{}, nil,
		WithHost("127.0.0.1"),
		WithPort(0),
		WithMetrics("/metrics", reg, reg),
	)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Stop(context.Background()) })

	base := "http://" + srv.Addr()
	code, body := get(t, base+"/ping")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"data":"pong"`)

	want := `stockcast_http_requests_total{method="GET",route="/ping",status="200"} 1`
	assert.Eventually(t, func() bool {
		_, body := get(t, base+"/metrics")
		return strings.Contains(body, want)
	}, 2*time.Second, 20*time.Millisecond)
}

func TestServerStartReportsBindError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	srv := NewServer(nil, nil, WithHost("127.0.0.1"), WithPort(port))
	assert.Error(t, srv.Start())
}
