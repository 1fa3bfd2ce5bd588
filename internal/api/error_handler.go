package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-gear-rental/internal/pkg/logger"
)

// ErrorResponse is the single error body shape returned by the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// NewHTTPError builds an echo error whose body carries details.
func NewHTTPError(code int, message, details string) *echo.HTTPError {
	return echo.NewHTTPError(code, ErrorResponse{Error: message, Code: code, Details: details})
}

// CustomHTTPErrorHandler renders every error as an ErrorResponse.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	resp := ErrorResponse{
		Error: "internal server error, please retry later",
		Code:  http.StatusInternalServerError,
	}

	if he, ok := err.(*echo.HTTPError); ok {
		resp.Code = he.Code
		switch m := he.Message.(type) {
		case ErrorResponse:
			resp = m
			resp.Code = he.Code
		case string:
			resp.Error = m
		default:
			resp.Error = http.StatusText(he.Code)
		}
		if he.Internal != nil {
			err = he.Internal
		}
	}

	// details of server errors stay in the log
	if resp.Code >= 500 {
		logger.Error("server error",
			zap.Int("status", resp.Code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
		resp.Details = ""
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(resp.Code)
	} else {
		err = c.JSON(resp.Code, resp)
	}
	if err != nil {
		logger.Error("failed to send error response", zap.Error(err))
	}
}
