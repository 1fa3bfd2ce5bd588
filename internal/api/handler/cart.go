package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-gear-rental/internal/application"
	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/cart"
)

const sessionHeader = "X-Session-ID"

type CartHandler struct {
	service CartServiceInterface
}

func NewCartHandler(s CartServiceInterface) *CartHandler {
	return &CartHandler{service: s}
}

type CartLineResponse struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name,omitempty"`
	PricePerTrip int64  `json:"price_per_trip"`
	Quantity     int    `json:"quantity"`
	LineTotal    int64  `json:"line_total"`
}

type CartResponse struct {
	SessionID    string             `json:"session_id"`
	StartDate    string             `json:"start_date,omitempty"`
	Window       *WindowResponse    `json:"window,omitempty"`
	Items        []CartLineResponse `json:"items"`
	DiscountCode string             `json:"discount_code,omitempty"`
	Subtotal     int64              `json:"subtotal"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func toCartResponse(v *application.CartView) CartResponse {
	resp := CartResponse{
		SessionID:    v.Cart.SessionID,
		Items:        make([]CartLineResponse, 0, len(v.Lines)),
		DiscountCode: v.Cart.DiscountCode,
		Subtotal:     v.Subtotal,
		UpdatedAt:    v.Cart.UpdatedAt,
	}
	if v.Cart.StartDate != nil {
		resp.StartDate = calendar.FormatDate(*v.Cart.StartDate)
	}
	if v.Window != nil {
		w := toWindowResponse(*v.Window)
		resp.Window = &w
	}
	for _, l := range v.Lines {
		resp.Items = append(resp.Items, CartLineResponse{
			ProductID:    l.ProductID,
			ProductName:  l.ProductName,
			PricePerTrip: l.PricePerTrip,
			Quantity:     l.Quantity,
			LineTotal:    l.LineTotal,
		})
	}
	return resp
}

type ReplaceCartRequest struct {
	StartDate    string        `json:"start_date" example:"2026-10-16"`
	Items        []ItemRequest `json:"items" validate:"dive"`
	DiscountCode string        `json:"discount_code"`
}

type CheckoutRequest struct {
	Customer       CustomerRequest `json:"customer"`
	IdempotencyKey string          `json:"idempotency_key"`
}

func session(c echo.Context) string {
	return c.Request().Header.Get(sessionHeader)
}

// Get godoc
// @Summary Read the session cart
// @Tags cart
// @Produce json
// @Param X-Session-ID header string true "cart session"
// @Success 200 {object} CartResponse
// @Router /cart [get]
func (h *CartHandler) Get(c echo.Context) error {
	v, err := h.service.Get(c.Request().Context(), session(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toCartResponse(v))
}

// Replace godoc
// @Summary Replace the session cart
// @Tags cart
// @Accept json
// @Produce json
// @Param X-Session-ID header string true "cart session"
// @Param request body ReplaceCartRequest true "cart"
// @Success 200 {object} CartResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /cart [put]
func (h *CartHandler) Replace(c echo.Context) error {
	var req ReplaceCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("malformed JSON body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	start, err := parseBodyDate(req.StartDate)
	if err != nil {
		return toHTTPError(err)
	}
	input := application.ReplaceCartInput{StartDate: start, DiscountCode: req.DiscountCode}
	for _, it := range req.Items {
		input.Items = append(input.Items, cart.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	v, err := h.service.Replace(c.Request().Context(), session(c), input)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toCartResponse(v))
}

func (h *CartHandler) Clear(c echo.Context) error {
	if err := h.service.Clear(c.Request().Context(), session(c)); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("malformed JSON body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	v, err := h.service.AddItem(c.Request().Context(), session(c), req.ProductID, req.Quantity)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toCartResponse(v))
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	v, err := h.service.RemoveItem(c.Request().Context(), session(c), c.Param("product_id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toCartResponse(v))
}

// Checkout godoc
// @Summary Check out the session cart
// @Description The cart is cleared once the reservation is stored.
// @Tags cart
// @Accept json
// @Produce json
// @Param X-Session-ID header string true "cart session"
// @Param request body CheckoutRequest true "customer"
// @Success 201 {object} ReservationResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /checkout [post]
func (h *CartHandler) Checkout(c echo.Context) error {
	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("malformed JSON body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	r, err := h.service.Checkout(c.Request().Context(), session(c), req.Customer.toCustomer(), idempotencyKey(c, req.IdempotencyKey))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toReservationResponse(c, r))
}
