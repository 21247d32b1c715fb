package middleware

import (
	"context"

	"agrikoSearch/business/search"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestID attaches a trace id to the request context so business-layer
// logs correlate with the response header.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			traceID := c.Request().Header.Get("X-Request-ID")
			if traceID == "" {
				traceID = uuid.NewString()
			}

			ctx := context.WithValue(c.Request().Context(), search.TraceIDKey, traceID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set("X-Request-ID", traceID)

			return next(c)
		}
	}
}
