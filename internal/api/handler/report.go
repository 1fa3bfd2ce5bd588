package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
)

type ReportHandler struct {
	service ReportServiceInterface
}

func NewReportHandler(s ReportServiceInterface) *ReportHandler {
	return &ReportHandler{service: s}
}

type ProductUnitsResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Units       int    `json:"units"`
}

type SummaryResponse struct {
	From           string                 `json:"from"`
	To             string                 `json:"to"`
	Reservations   int                    `json:"reservations"`
	CountsByStatus map[string]int         `json:"counts_by_status"`
	Revenue        int64                  `json:"revenue"`
	DiscountGiven  int64                  `json:"discount_given"`
	UnitsByProduct []ProductUnitsResponse `json:"units_by_product"`
}

// Summary godoc
// @Summary Reservation summary for windows starting in a date range
// @Tags admin
// @Produce json
// @Param from query string true "first start date (YYYY-MM-DD)"
// @Param to query string true "last start date (YYYY-MM-DD)"
// @Success 200 {object} SummaryResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /admin/reports/summary [get]
func (h *ReportHandler) Summary(c echo.Context) error {
	from, err := requiredDate(c, "from")
	if err != nil {
		return toHTTPError(err)
	}
	to, err := requiredDate(c, "to")
	if err != nil {
		return toHTTPError(err)
	}
	s, err := h.service.Summary(c.Request().Context(), from, to)
	if err != nil {
		return toHTTPError(err)
	}

	resp := SummaryResponse{
		From:           calendar.FormatDate(s.From),
		To:             calendar.FormatDate(s.To),
		Reservations:   s.Reservations,
		CountsByStatus: make(map[string]int, len(reservation.AllStatuses)),
		Revenue:        s.Revenue,
		DiscountGiven:  s.DiscountGiven,
		UnitsByProduct: make([]ProductUnitsResponse, 0, len(s.UnitsByProduct)),
	}
	for _, st := range reservation.AllStatuses {
		resp.CountsByStatus[string(st)] = s.CountsByStatus[st]
	}
	for _, u := range s.UnitsByProduct {
		resp.UnitsByProduct = append(resp.UnitsByProduct, ProductUnitsResponse{
			ProductID:   u.ProductID,
			ProductName: u.ProductName,
			Units:       u.Units,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
