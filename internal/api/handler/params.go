package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
)

// optionalDate parses a YYYY-MM-DD query parameter; empty yields nil.
func optionalDate(c echo.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	d, err := calendar.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func requiredDate(c echo.Context, name string) (time.Time, error) {
	d, err := optionalDate(c, name)
	if err != nil {
		return time.Time{}, err
	}
	if d == nil {
		return time.Time{}, badRequest(name + " is required")
	}
	return *d, nil
}

func intQuery(c echo.Context, name string) int {
	n, _ := strconv.Atoi(c.QueryParam(name))
	return n
}

// parseBodyDate parses an optional YYYY-MM-DD request field.
func parseBodyDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := calendar.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseTimestamp accepts RFC 3339 or a plain date.
func parseTimestamp(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(*raw)); err == nil {
		return &t, nil
	}
	return parseBodyDate(*raw)
}
