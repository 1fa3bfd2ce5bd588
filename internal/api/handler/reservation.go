package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-gear-rental/internal/application"
	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
	"github.com/sanosuguru/go-gear-rental/internal/infrastructure/payment"
)

const idempotencyHeader = "Idempotency-Key"

type ReservationHandler struct {
	service ReservationServiceInterface
}

func NewReservationHandler(s ReservationServiceInterface) *ReservationHandler {
	return &ReservationHandler{service: s}
}

type CustomerRequest struct {
	Name    string `json:"name" validate:"required,max=200" example:"Budi Santoso"`
	Email   string `json:"email" validate:"omitempty,email" example:"budi@example.id"`
	Phone   string `json:"phone" validate:"omitempty,max=30" example:"+628123456789"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func (r CustomerRequest) toCustomer() reservation.Customer {
	return reservation.Customer{
		Name:    strings.TrimSpace(r.Name),
		Email:   strings.TrimSpace(r.Email),
		Phone:   strings.TrimSpace(r.Phone),
		Address: r.Address,
		Notes:   r.Notes,
	}
}

type ItemRequest struct {
	ProductID string `json:"product_id" validate:"required" example:"9b2f0c1e-4c1a-4d8e-9a51-2f6f1f0f6a10"`
	Quantity  int    `json:"quantity" validate:"min=1" example:"2"`
}

type CreateReservationRequest struct {
	Customer       CustomerRequest `json:"customer"`
	StartDate      string          `json:"start_date" validate:"required" example:"2026-10-16"`
	Items          []ItemRequest   `json:"items" validate:"required,min=1,dive"`
	DiscountCode   string          `json:"discount_code" example:"HEMAT10"`
	IdempotencyKey string          `json:"idempotency_key" example:"order-2026-001"`
}

func idempotencyKey(c echo.Context, fromBody string) string {
	if k := strings.TrimSpace(fromBody); k != "" {
		return k
	}
	return strings.TrimSpace(c.Request().Header.Get(idempotencyHeader))
}

// Create godoc
// @Summary Book items for one rental run
// @Description Stock is re-checked under lock. A repeated idempotency key returns the original booking.
// @Tags reservations
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "idempotency key"
// @Param request body CreateReservationRequest true "checkout"
// @Success 201 {object} ReservationResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "insufficient stock or checkout busy"
// @Router /reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	var req CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("malformed JSON body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	start, err := calendar.ParseDate(req.StartDate)
	if err != nil {
		return toHTTPError(err)
	}
	input := application.CheckoutInput{
		Customer:       req.Customer.toCustomer(),
		StartDate:      start,
		DiscountCode:   req.DiscountCode,
		IdempotencyKey: idempotencyKey(c, req.IdempotencyKey),
	}
	for _, it := range req.Items {
		input.Items = append(input.Items, application.CheckoutItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	r, err := h.service.Checkout(c.Request().Context(), input)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toReservationResponse(c, r))
}

// GetByCode godoc
// @Summary Look up a reservation by order code
// @Tags reservations
// @Produce json
// @Param code path string true "order code"
// @Param contact query string true "email or phone given at checkout"
// @Param Accept-Language header string false "id for Indonesian status labels"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /reservations/{code} [get]
func (h *ReservationHandler) GetByCode(c echo.Context) error {
	r, err := h.service.LookupByOrderCode(c.Request().Context(), c.Param("code"), c.QueryParam("contact"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(c, r))
}

// List godoc
// @Summary List reservations
// @Tags admin
// @Produce json
// @Param status query string false "canonical status"
// @Param from query string false "window start on or after (YYYY-MM-DD)"
// @Param to query string false "window start on or before (YYYY-MM-DD)"
// @Param limit query int false "page size" default(20)
// @Param offset query int false "offset" default(0)
// @Success 200 {array} ReservationResponse
// @Router /admin/reservations [get]
func (h *ReservationHandler) List(c echo.Context) error {
	filter := reservation.ListFilter{
		Limit:  intQuery(c, "limit"),
		Offset: intQuery(c, "offset"),
	}
	if s := c.QueryParam("status"); s != "" {
		st, err := reservation.ParseStatus(s)
		if err != nil {
			return toHTTPError(err)
		}
		filter.Status = st
	}
	from, err := optionalDate(c, "from")
	if err != nil {
		return toHTTPError(err)
	}
	to, err := optionalDate(c, "to")
	if err != nil {
		return toHTTPError(err)
	}
	if from != nil {
		filter.From = *from
	}
	if to != nil {
		filter.To = *to
	}

	list, err := h.service.ListReservations(c.Request().Context(), filter)
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]ReservationResponse, len(list))
	for i, r := range list {
		resp[i] = toReservationResponse(c, r)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ReservationHandler) GetByID(c echo.Context) error {
	r, err := h.service.GetReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(c, r))
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required" example:"confirmed"`
}

// UpdateStatus godoc
// @Summary Set a reservation status
// @Description Any canonical status is accepted.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "reservation ID"
// @Param request body UpdateStatusRequest true "status"
// @Success 200 {object} ReservationResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /admin/reservations/{id}/status [patch]
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("malformed JSON body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	r, err := h.service.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(c, r))
}

// PaymentNotification godoc
// @Summary Payment gateway callback
// @Description The signature is verified before anything is applied.
// @Tags payments
// @Accept json
// @Produce json
// @Param request body payment.Notification true "gateway notification"
// @Success 200 {object} map[string]string
// @Failure 403 {object} api.ErrorResponse
// @Router /payments/notifications [post]
func (h *ReservationHandler) PaymentNotification(c echo.Context) error {
	var n payment.Notification
	if err := c.Bind(&n); err != nil {
		return badRequest("malformed JSON body")
	}
	if n.OrderID == "" {
		return badRequest("order_id is required")
	}
	r, err := h.service.HandlePaymentNotification(c.Request().Context(), n)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"order_code": r.OrderCode,
		"status":     string(r.Status),
	})
}
