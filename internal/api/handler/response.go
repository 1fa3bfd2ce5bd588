package handler

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-gear-rental/internal/application"
	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/discount"
	"github.com/sanosuguru/go-gear-rental/internal/domain/product"
	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
)

// Indonesian labels for the canonical statuses. They are only ever rendered.
var indonesianStatus = map[reservation.Status]string{
	reservation.StatusPending:   "menunggu",
	reservation.StatusConfirmed: "dikonfirmasi",
	reservation.StatusActive:    "aktif",
	reservation.StatusCompleted: "selesai",
	reservation.StatusCancelled: "dibatalkan",
}

// statusLabel renders s for the request's Accept-Language.
func statusLabel(c echo.Context, s reservation.Status) string {
	if wantsIndonesian(c.Request().Header.Get("Accept-Language")) {
		if label, ok := indonesianStatus[s]; ok {
			return label
		}
	}
	return string(s)
}

func wantsIndonesian(acceptLanguage string) bool {
	first := strings.TrimSpace(strings.Split(acceptLanguage, ",")[0])
	first = strings.ToLower(strings.Split(first, ";")[0])
	return first == "id" || strings.HasPrefix(first, "id-")
}

type WindowResponse struct {
	Start string `json:"start" example:"2026-10-16"`
	End   string `json:"end" example:"2026-10-19"`
	Days  int    `json:"days" example:"4"`
}

func toWindowResponse(w calendar.Window) WindowResponse {
	return WindowResponse{
		Start: calendar.FormatDate(w.Start),
		End:   calendar.FormatDate(w.End),
		Days:  w.Days(),
	}
}

type ProductResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name" example:"Dome Tent 4P"`
	Category     string `json:"category" example:"tent"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	PricePerDay  int64  `json:"price_per_day" example:"30000"`
	PricePerTrip int64  `json:"price_per_trip" example:"100000"`
	Stock        int    `json:"stock" example:"5"`
	Version      int    `json:"version"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func toProductResponse(p *product.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.Category,
		Description:  p.Description,
		ImageURL:     p.ImageURL,
		PricePerDay:  p.PricePerDay,
		PricePerTrip: p.PricePerTrip,
		Stock:        p.Stock,
		Version:      p.Version,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.Format(time.RFC3339),
	}
}

// AvailabilityResponse is a catalog entry. Remaining equals Stock and
// Realtime is false when no start date was requested.
type AvailabilityResponse struct {
	ProductResponse
	Remaining int             `json:"remaining"`
	Realtime  bool            `json:"realtime"`
	Window    *WindowResponse `json:"window,omitempty"`
}

func toAvailabilityResponse(pa application.ProductAvailability) AvailabilityResponse {
	resp := AvailabilityResponse{
		ProductResponse: toProductResponse(pa.Product),
		Remaining:       pa.Remaining,
		Realtime:        pa.Realtime,
	}
	if pa.Window != nil {
		w := toWindowResponse(*pa.Window)
		resp.Window = &w
	}
	return resp
}

type CustomerResponse struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type ReservationItemResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	PricePerRun int64  `json:"price_per_run"`
	LineTotal   int64  `json:"line_total"`
}

type PaymentResponse struct {
	Token         string     `json:"token,omitempty"`
	RedirectURL   string     `json:"redirect_url,omitempty"`
	Status        string     `json:"status,omitempty"`
	TransactionID string     `json:"transaction_id,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

type ReservationResponse struct {
	ID                 string                    `json:"id"`
	OrderCode          string                    `json:"order_code" example:"RNT-1026-0001"`
	Status             string                    `json:"status" example:"pending"`
	StatusLabel        string                    `json:"status_label" example:"menunggu"`
	Customer           CustomerResponse          `json:"customer"`
	Window             WindowResponse            `json:"window"`
	Items              []ReservationItemResponse `json:"items"`
	Subtotal           int64                     `json:"subtotal"`
	DiscountCode       string                    `json:"discount_code,omitempty"`
	DiscountPercentage int                       `json:"discount_percentage,omitempty"`
	DiscountAmount     int64                     `json:"discount_amount"`
	Total              int64                     `json:"total"`
	Payment            *PaymentResponse          `json:"payment,omitempty"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

func toReservationResponse(c echo.Context, r *reservation.Reservation) ReservationResponse {
	resp := ReservationResponse{
		ID:          r.ID,
		OrderCode:   r.OrderCode,
		Status:      string(r.Status),
		StatusLabel: statusLabel(c, r.Status),
		Customer: CustomerResponse{
			Name:    r.Customer.Name,
			Email:   r.Customer.Email,
			Phone:   r.Customer.Phone,
			Address: r.Customer.Address,
			Notes:   r.Customer.Notes,
		},
		Window:             toWindowResponse(r.Window),
		Items:              make([]ReservationItemResponse, 0, len(r.Items)),
		Subtotal:           r.Subtotal,
		DiscountCode:       r.DiscountCode,
		DiscountPercentage: r.DiscountPercentage,
		DiscountAmount:     r.DiscountAmount,
		Total:              r.Total,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	for _, it := range r.Items {
		resp.Items = append(resp.Items, ReservationItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			PricePerRun: it.PricePerRun,
			LineTotal:   it.LineTotal(),
		})
	}
	if r.Payment != (reservation.Payment{}) {
		resp.Payment = &PaymentResponse{
			Token:         r.Payment.Token,
			RedirectURL:   r.Payment.RedirectURL,
			Status:        r.Payment.Status,
			TransactionID: r.Payment.TransactionID,
			PaidAt:        r.Payment.PaidAt,
		}
	}
	return resp
}

type DiscountResponse struct {
	ID         string     `json:"id"`
	Code       string     `json:"code" example:"HEMAT10"`
	Percentage int        `json:"percentage" example:"10"`
	MaxUses    *int       `json:"max_uses,omitempty"`
	UsedCount  int        `json:"used_count"`
	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidTo    *time.Time `json:"valid_to,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toDiscountResponse(d *discount.Code) DiscountResponse {
	return DiscountResponse{
		ID:         d.ID,
		Code:       d.Code,
		Percentage: d.Percentage,
		MaxUses:    d.MaxUses,
		UsedCount:  d.UsedCount,
		ValidFrom:  d.ValidFrom,
		ValidTo:    d.ValidTo,
		IsActive:   d.IsActive,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}
