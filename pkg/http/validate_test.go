package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chartRequest struct {
	Ticker   string `param:"ticker" validate:"required,max=5"`
	Interval string `query:"interval" default:"1m" validate:"oneof=1d 1m"`
}

func newContext(target string, ticker string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/chart/:ticker")
	c.SetParamNames("ticker")
	c.SetParamValues(ticker)
	return c
}

func TestReadAndValidateRequest_BindsAndDefaults(t *testing.T) {
	req := &chartRequest{}
	verr := ReadAndValidateRequest(newContext("/chart/msft", "msft"), req)
	require.Nil(t, verr)
	assert.Equal(t, "msft", req.Ticker)
	assert.Equal(t, "1m", req.Interval)

	req = &chartRequest{}
	require.Nil(t, ReadAndValidateRequest(newContext("/chart/msft?interval=1d", "msft"), req))
	assert.Equal(t, "1d", req.Interval)
}

func TestReadAndValidateRequest_ReportsFieldErrors(t *testing.T) {
	verr := ReadAndValidateRequest(newContext("/chart/toolong?interval=9y", "toolong"), &chartRequest{})
	errs, ok := verr.([]ValidationError)
	require.True(t, ok)
	require.Len(t, errs, 2)

	assert.Equal(t, "ERR_MAX", errs[0].Code)
	assert.Equal(t, "ticker", errs[0].Field)
	assert.Equal(t, "ticker must be at most 5 characters", errs[0].Message)

	assert.Equal(t, "ERR_ONEOF", errs[1].Code)
	assert.Equal(t, "interval", errs[1].Field)
	assert.Equal(t, []string{"1d", "1m"}, errs[1].Params["options"])
}

type symbolRequest struct {
	Ticker string `param:"ticker" validate:"required,ticker"`
}

func TestReadAndValidateRequest_TickerRule(t *testing.T) {
	for _, ok := range []string{"AAPL", "brk.b", "^GSPC", "EURUSD=X", "0700.HK"} {
		assert.Nil(t, ReadAndValidateRequest(newContext("/chart/x", ok), &symbolRequest{}), ok)
	}
	for _, bad := range []string{"AA PL", "$AAPL", "AAPL;DROP", "ABCDEFGHIJKLMNOPQ"} {
		verr := ReadAndValidateRequest(newContext("/chart/x", bad), &symbolRequest{})
		errs, isList := verr.([]ValidationError)
		require.True(t, isList, bad)
		assert.Equal(t, "ERR_TICKER", errs[0].Code, bad)
	}
}
