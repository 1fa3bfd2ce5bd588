package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-gear-rental/internal/application"
)

type DiscountHandler struct {
	service DiscountServiceInterface
}

func NewDiscountHandler(s DiscountServiceInterface) *DiscountHandler {
	return &DiscountHandler{service: s}
}

type DiscountValidationResponse struct {
	Valid      bool   `json:"valid"`
	Code       string `json:"code,omitempty"`
	Percentage int    `json:"percentage"`
	Reason     string `json:"reason,omitempty" example:"expired"`
}

type DiscountRequest struct {
	Code       string  `json:"code" validate:"required,max=50" example:"HEMAT10"`
	Percentage int     `json:"percentage" validate:"min=1,max=100" example:"10"`
	MaxUses    *int    `json:"max_uses" validate:"omitempty,min=1"`
	ValidFrom  *string `json:"valid_from" example:"2026-10-01T00:00:00+07:00"`
	ValidTo    *string `json:"valid_to"`
	IsActive   *bool   `json:"is_active"`
}

func (r DiscountRequest) toInput() (application.DiscountInput, error) {
	from, err := parseTimestamp(r.ValidFrom)
	if err != nil {
		return application.DiscountInput{}, err
	}
	to, err := parseTimestamp(r.ValidTo)
	if err != nil {
		return application.DiscountInput{}, err
	}
	return application.DiscountInput{
		Code:       r.Code,
		Percentage: r.Percentage,
		MaxUses:    r.MaxUses,
		ValidFrom:  from,
		ValidTo:    to,
		IsActive:   r.IsActive,
	}, nil
}

// Validate godoc
// @Summary Check a discount code without redeeming it
// @Description Invalid codes answer 200 with valid=false and a reason.
// @Tags discounts
// @Produce json
// @Param code query string true "discount code"
// @Success 200 {object} DiscountValidationResponse
// @Router /discounts/validate [get]
func (h *DiscountHandler) Validate(c echo.Context) error {
	res, err := h.service.Validate(c.Request().Context(), c.QueryParam("code"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, DiscountValidationResponse{
		Valid:      res.Valid,
		Code:       res.Code,
		Percentage: res.Percentage,
		Reason:     res.Reason,
	})
}

func (h *DiscountHandler) List(c echo.Context) error {
	codes, err := h.service.ListCodes(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]DiscountResponse, len(codes))
	for i, d := range codes {
		resp[i] = toDiscountResponse(d)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *DiscountHandler) GetByID(c echo.Context) error {
	d, err := h.service.GetCode(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toDiscountResponse(d))
}

// Create godoc
// @Summary Create a discount code
// @Tags admin
// @Accept json
// @Produce json
// @Param request body DiscountRequest true "discount code"
// @Success 201 {object} DiscountResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "code already exists"
// @Router /admin/discounts [post]
func (h *DiscountHandler) Create(c echo.Context) error {
	input, err := h.bind(c)
	if err != nil {
		return err
	}
	d, err := h.service.CreateCode(c.Request().Context(), input)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toDiscountResponse(d))
}

func (h *DiscountHandler) Update(c echo.Context) error {
	input, err := h.bind(c)
	if err != nil {
		return err
	}
	d, err := h.service.UpdateCode(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toDiscountResponse(d))
}

func (h *DiscountHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteCode(c.Request().Context(), c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *DiscountHandler) bind(c echo.Context) (application.DiscountInput, error) {
	var req DiscountRequest
	if err := c.Bind(&req); err != nil {
		return application.DiscountInput{}, badRequest("malformed JSON body")
	}
	if err := c.Validate(&req); err != nil {
		return application.DiscountInput{}, err
	}
	input, err := req.toInput()
	if err != nil {
		return application.DiscountInput{}, toHTTPError(err)
	}
	return input, nil
}
