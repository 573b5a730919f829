package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	models "StockCast/internal/domain/models"
	"StockCast/internal/service/ratelimit"
	"StockCast/internal/services/regression"
	"StockCast/internal/usecase"
	xhttp "StockCast/pkg/http"
	xlogger "StockCast/pkg/logger"
	"StockCast/pkg/util"

	"github.com/labstack/echo/v4"
)

// Forecaster runs one forecast.
type Forecaster interface {
	Run(ctx context.Context, p usecase.ForecastParams) (*usecase.ForecastResult, error)
}

// ForecastResponse is the body of GET /api/forecast.
type ForecastResponse struct {
	Report      *models.ForecastReport `json:"report"`
	Correlation *CorrelationView       `json:"correlation,omitempty"`
}

// CorrelationView is a JSON-safe correlation matrix; undefined entries are null.
type CorrelationView struct {
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
}

// ForecastEchoHandler serves the forecast API.
type ForecastEchoHandler struct {
	logger  *xlogger.Logger
	uc      Forecaster
	limiter *ratelimit.Limiter
}

func NewForecastEchoHandler(logger *xlogger.Logger, uc Forecaster) *ForecastEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &ForecastEchoHandler{logger: logger, uc: uc}
}

// SetRateLimiter limits /api/forecast per client IP.
func (h *ForecastEchoHandler) SetRateLimiter(l *ratelimit.Limiter) { h.limiter = l }

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/forecast", h.Forecast, h.rateLimit)
	g.GET("/health", h.Health)
}

func (h *ForecastEchoHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !h.limiter.Allow(c.RealIP()) {
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError())
		}
		return next(c)
	}
}

func (h *ForecastEchoHandler) Forecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	from, err := parseBound("from", req.From)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	to, err := parseBound("to", req.To)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return xhttp.AppErrorResponse(c, xhttp.InvalidRangeError("from", "to"))
	}

	res, err := h.uc.Run(c.Request().Context(), usecase.ForecastParams{Symbol: req.Symbol, From: from, To: to})
	if err != nil {
		var ide *regression.InsufficientDataError
		if errors.As(err, &ide) {
			return xhttp.AppErrorResponse(c, xhttp.InsufficientDataError(ide.Stage, ide.Got, ide.Need))
		}
		h.logger.Error("forecast usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	out := ForecastResponse{Report: res.Report}
	if res.Correlation != nil {
		out.Correlation = correlationView(*res.Correlation)
	}
	return xhttp.SuccessResponse(c, out)
}

func (h *ForecastEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func parseBound(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, ok := util.ParseTime(s)
	if !ok {
		return time.Time{}, xhttp.InvalidDateError(field)
	}
	return t, nil
}

func correlationView(c regression.Correlation) *CorrelationView {
	v := &CorrelationView{Columns: c.Columns, Values: make([][]*float64, len(c.Values))}
	for i, row := range c.Values {
		v.Values[i] = make([]*float64, len(row))
		for j, x := range row {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				continue
			}
			x := x
			v.Values[i][j] = &x
		}
	}
	return v
}
