package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	applogger "StockCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

const stackLimit = 4 << 10

// Recover converts a handler panic into a 500 handled by echo's error handler.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}
				cause, ok := r.(error)
				if !ok {
					cause = fmt.Errorf("%v", r)
				}
				buf := make([]byte, stackLimit)
				buf = buf[:runtime.Stack(buf, false)]
				l.Error("http handler panic",
					applogger.Error(cause),
					applogger.String("method", c.Request().Method),
					applogger.String("route", c.Path()),
					applogger.String("stack", string(buf)),
				)
				err = echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			}()
			return next(c)
		}
	}
}
