package middleware

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/finance-tracker/internal/log"
)

// RequestID tags every request with a UUID, reusing an incoming
// X-Request-ID when the client sent one.
func RequestID() echo.MiddlewareFunc {
	return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

// RequestLogger writes one structured line per request and puts a
// request-scoped logger on the request context for handlers.
func RequestLogger(logger *log.Logger) echo.MiddlewareFunc {
	httpLog := logger.WithComponent(log.ComponentHTTP)
	logRequest := echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogRoutePath: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String(log.FieldRequestID, v.RequestID),
				slog.String(log.FieldMethod, v.Method),
				slog.String(log.FieldURI, v.URI),
				slog.String(log.FieldRoute, v.RoutePath),
				slog.Int(log.FieldStatusCode, v.Status),
				slog.Int64(log.FieldDuration, v.Latency.Milliseconds()),
				slog.String(log.FieldClientIP, v.RemoteIP),
			}
			if uid, ok := UserID(c); ok {
				attrs = append(attrs, slog.Uint64(log.FieldUserID, uid))
			}
			level := slog.LevelInfo
			switch {
			case v.Status >= 500:
				level = slog.LevelError
				if v.Error != nil {
					attrs = append(attrs, slog.String(log.FieldError, v.Error.Error()))
				}
			case v.Status >= 400:
				level = slog.LevelWarn
			}
			httpLog.LogAttrs(context.Background(), level, "request", attrs...)
			return nil
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		inner := logRequest(next)
		return func(c echo.Context) error {
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			scoped := logger.With(log.FieldRequestID, rid)
			req := c.Request()
			c.SetRequest(req.WithContext(log.NewContext(req.Context(), scoped)))
			return inner(c)
		}
	}
}
