package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	headerSessionID      = "X-Session-ID"
	headerIdempotencyKey = "Idempotency-Key"

	// maxBodySize caps request bodies; the largest payload is a cart or checkout.
	maxBodySize = "1M"
)

// SetupMiddleware installs the chain shared by the storefront and admin API.
func SetupMiddleware(e *echo.Echo) {
	e.Use(RequestIDMiddleware())
	e.Use(RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(maxBodySize))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization,
			"Accept-Language", headerSessionID, headerIdempotencyKey,
		},
		ExposeHeaders: []string{echo.HeaderXRequestID},
	}))
}
