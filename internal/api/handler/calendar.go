package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
)

type CalendarHandler struct {
	service CalendarServiceInterface
}

func NewCalendarHandler(s CalendarServiceInterface) *CalendarHandler {
	return &CalendarHandler{service: s}
}

// Window godoc
// @Summary Validate a start date and derive its rental window
// @Tags calendar
// @Produce json
// @Param start query string true "start date (YYYY-MM-DD)"
// @Success 200 {object} WindowResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /calendar/window [get]
func (h *CalendarHandler) Window(c echo.Context) error {
	start, err := requiredDate(c, "start")
	if err != nil {
		return toHTTPError(err)
	}
	w, err := h.service.WindowFor(start)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toWindowResponse(w))
}

type RentalDaysResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
	Days int    `json:"days"`
}

// Days godoc
// @Summary Count rental weekend days in a date range
// @Tags calendar
// @Produce json
// @Param from query string true "first date (YYYY-MM-DD)"
// @Param to query string true "last date (YYYY-MM-DD)"
// @Success 200 {object} RentalDaysResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /calendar/days [get]
func (h *CalendarHandler) Days(c echo.Context) error {
	from, err := requiredDate(c, "from")
	if err != nil {
		return toHTTPError(err)
	}
	to, err := requiredDate(c, "to")
	if err != nil {
		return toHTTPError(err)
	}
	days, err := h.service.RentalDays(from, to)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, RentalDaysResponse{
		From: calendar.FormatDate(from),
		To:   calendar.FormatDate(to),
		Days: days,
	})
}
