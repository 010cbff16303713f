package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	"StockLens/internal/domain/service"
	svcmetrics "StockLens/internal/service/metrics"
	"StockLens/internal/services/technical"
	"StockLens/internal/usecase"
	xhttp "StockLens/pkg/http"
	"StockLens/pkg/http/middleware"
	xlogger "StockLens/pkg/logger"
	"StockLens/pkg/util"
)

// StockEchoHandler serves the per-ticker market endpoints.
type StockEchoHandler struct {
	logger    *xlogger.Logger
	stock     *usecase.StockUseCase
	sentiment *usecase.SentimentUseCase
	limiter   middleware.Allower
}

func NewStockEchoHandler(logger *xlogger.Logger, stock *usecase.StockUseCase, sentiment *usecase.SentimentUseCase, limiter middleware.Allower) *StockEchoHandler {
	svcmetrics.Register()
	return &StockEchoHandler{logger: logger, stock: stock, sentiment: sentiment, limiter: limiter}
}

func (h *StockEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/stock/:ticker", h.Quote)
	e.GET("/indicators/:ticker", h.Indicators)
	e.GET("/history/:ticker", h.History)
	e.GET("/metrics/:ticker", h.Fundamentals)
	e.GET("/sentiment/:ticker", h.Sentiment)
	e.GET("/analysis/:ticker", h.Analysis, middleware.RateLimit(h.limiter))
}

func (h *StockEchoHandler) Quote(c echo.Context) error {
	const endpoint = "stock"
	defer svcmetrics.Observe(endpoint, time.Now())

	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, endpoint, verr)
	}
	ticker := util.NormalizeTicker(req.Ticker)

	res, err := h.stock.Quote(c.Request().Context(), ticker)
	if err != nil {
		return h.fail(c, endpoint, ticker, "Not enough data", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *StockEchoHandler) Indicators(c echo.Context) error {
	const endpoint = "indicators"
	defer svcmetrics.Observe(endpoint, time.Now())

	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, endpoint, verr)
	}
	ticker := util.NormalizeTicker(req.Ticker)

	res, err := h.stock.Indicators(c.Request().Context(), ticker)
	if err != nil {
		return h.fail(c, endpoint, ticker, "Not enough data for indicators", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *StockEchoHandler) History(c echo.Context) error {
	const endpoint = "history"
	defer svcmetrics.Observe(endpoint, time.Now())

	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, endpoint, verr)
	}
	ticker := util.NormalizeTicker(req.Ticker)

	res, err := h.stock.History(c.Request().Context(), ticker, req.Interval)
	if err != nil {
		return h.fail(c, endpoint, ticker, "Not enough data", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func (h *StockEchoHandler) Fundamentals(c echo.Context) error {
	const endpoint = "fundamentals"
	defer svcmetrics.Observe(endpoint, time.Now())

	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, endpoint, verr)
	}
	ticker := util.NormalizeTicker(req.Ticker)

	res, err := h.stock.Fundamentals(c.Request().Context(), ticker)
	if err != nil {
		return h.fail(c, endpoint, ticker, "Not enough data", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *StockEchoHandler) Sentiment(c echo.Context) error {
	const endpoint = "sentiment"
	defer svcmetrics.Observe(endpoint, time.Now())

	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, endpoint, verr)
	}
	ticker := util.NormalizeTicker(req.Ticker)

	res, err := h.sentiment.GetSentiment(c.Request().Context(), ticker)
	if err != nil {
		return h.fail(c, endpoint, ticker, "Not enough data", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *StockEchoHandler) Analysis(c echo.Context) error {
	const endpoint = "analysis"
	defer svcmetrics.Observe(endpoint, time.Now())

	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, endpoint, verr)
	}
	ticker := util.NormalizeTicker(req.Ticker)

	res, err := h.stock.Analysis(c.Request().Context(), ticker)
	if err != nil {
		return h.fail(c, endpoint, ticker, "Not enough data for indicators", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *StockEchoHandler) badRequest(c echo.Context, endpoint string, verr interface{}) error {
	svcmetrics.Fail(endpoint, "ERR_VALIDATION")
	return xhttp.BadRequestResponse(c, verr)
}

func (h *StockEchoHandler) fail(c echo.Context, endpoint, ticker, insufficientMsg string, err error) error {
	appErr := ToAppError(err, insufficientMsg)
	svcmetrics.Fail(endpoint, appErr.Code)

	fields := []xlogger.Field{
		xlogger.String("endpoint", endpoint),
		xlogger.Ticker(ticker),
		xlogger.String("code", appErr.Code),
		xlogger.Error(err),
	}
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("stock usecase error", fields...)
	} else {
		h.logger.Warn("stock usecase rejected", fields...)
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// ToAppError maps domain and upstream errors to transport errors.
// insufficientMsg is the message used for insufficient data.
func ToAppError(err error, insufficientMsg string) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var ide *technical.InsufficientDataError
	var se *xhttp.StatusError
	switch {
	case errors.As(err, &ide):
		return xhttp.NewAppError("ERR_INSUFFICIENT_DATA", "", insufficientMsg, http.StatusBadRequest).
			WithParam("need", ide.Need).
			WithParam("have", ide.Have).
			WithError(err)
	case errors.Is(err, technical.ErrInsufficientData):
		return xhttp.NewAppError("ERR_INSUFFICIENT_DATA", "", insufficientMsg, http.StatusBadRequest).WithError(err)
	case errors.Is(err, technical.ErrDegenerateInput), errors.Is(err, technical.ErrInvalidSeries):
		return xhttp.UnprocessableError("Market data cannot be evaluated").WithError(err)
	case errors.Is(err, usecase.ErrNoHistory):
		return xhttp.NotFoundError("No historical data found").WithError(err)
	case errors.Is(err, domrepo.ErrNotFound):
		return xhttp.NotFoundError("Ticker not found").WithError(err)
	case errors.Is(err, service.ErrNarratorDisabled):
		return xhttp.ServiceUnavailableError("Analysis is not configured").WithError(err)
	case errors.As(err, &se):
		return xhttp.BadGatewayError("Market data provider failed").WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}
