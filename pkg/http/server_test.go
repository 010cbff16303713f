package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_RoutesAndEnvelope(t *testing.T) {
	routes := RouteFunc(func(e *echo.Echo) {
		e.GET("/metrics/:ticker", func(c echo.Context) error {
			return SuccessResponse(c, map[string]string{"ticker": c.Param("ticker")})
		})
		e.GET("/missing", func(c echo.Context) error {
			return AppErrorResponse(c, NotFoundError("No historical data found"))
		})
	})
	s := NewServer([]Handler{routes})

	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics/AAPL", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 200, body.Status)
	assert.Equal(t, map[string]interface{}{"ticker": "AAPL"}, body.Data)

	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# HELP")

	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_NOT_FOUND")
}

func TestAppErrorResponse_UnknownErrorIs500(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, AppErrorResponse(c, assert.AnError))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_StartAndStop(t *testing.T) {
	s := NewServer(nil,
		WithHost("127.0.0.1"),
		WithPort(0),
		WithTimeouts(0, 0, time.Second),
		WithCORS(nil),
		WithMetricsPath(""),
	)
	assert.Equal(t, "127.0.0.1:0", s.Addr())
	require.NoError(t, s.Start())

	resp, err := http.Get("http://" + s.Echo().Listener.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Stop(context.Background()))
}
