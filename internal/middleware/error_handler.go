package middleware

import (
	"errors"
	"net/http"

	"agrikoSearch/domain"
	"agrikoSearch/pkg/logger"
	jsonres "agrikoSearch/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler maps internal errors onto the response policy: validation
// problems get field-level 400s, everything else that escapes a handler is a
// 500 with a generic body.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		_ = c.JSON(http.StatusBadRequest, jsonres.Error(
			"VALIDATION_ERROR", ve.Message, map[string]string{"field": ve.Field},
		))
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		}
		_ = c.JSON(he.Code, jsonres.Error("HTTP_ERROR", msg, nil))
		return
	}

	logger.Error("unhandled error", "error", err, "path", c.Path())
	_ = c.JSON(http.StatusInternalServerError, jsonres.Error(
		"INTERNAL_ERROR", "Internal server error", nil,
	))
}
