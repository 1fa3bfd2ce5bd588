package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-gear-rental/internal/application"
	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/discount"
	"github.com/sanosuguru/go-gear-rental/internal/domain/product"
	"github.com/sanosuguru/go-gear-rental/internal/domain/report"
	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
	"github.com/sanosuguru/go-gear-rental/internal/infrastructure/payment"
)

// CalendarServiceInterface applies the rental calendar.
type CalendarServiceInterface interface {
	WindowFor(start time.Time) (calendar.Window, error)
	RentalDays(from, to time.Time) (int, error)
}

// ProductServiceInterface serves the catalog.
type ProductServiceInterface interface {
	CreateProduct(ctx context.Context, input application.CreateProductInput) (*product.Product, error)
	GetProduct(ctx context.Context, id string) (*product.Product, error)
	ListProducts(ctx context.Context, filter product.ListFilter) ([]*product.Product, error)
	UpdateProduct(ctx context.Context, input application.UpdateProductInput) (*product.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListAvailability(ctx context.Context, filter product.ListFilter, start *time.Time) ([]application.ProductAvailability, error)
	GetAvailability(ctx context.Context, id string, start *time.Time) (*application.ProductAvailability, error)
}

// DiscountServiceInterface validates and manages discount codes.
type DiscountServiceInterface interface {
	Validate(ctx context.Context, code string) (discount.Result, error)
	CreateCode(ctx context.Context, input application.DiscountInput) (*discount.Code, error)
	GetCode(ctx context.Context, id string) (*discount.Code, error)
	ListCodes(ctx context.Context) ([]*discount.Code, error)
	UpdateCode(ctx context.Context, id string, input application.DiscountInput) (*discount.Code, error)
	DeleteCode(ctx context.Context, id string) error
}

// CartServiceInterface manages session carts.
type CartServiceInterface interface {
	Get(ctx context.Context, sessionID string) (*application.CartView, error)
	Replace(ctx context.Context, sessionID string, input application.ReplaceCartInput) (*application.CartView, error)
	AddItem(ctx context.Context, sessionID, productID string, qty int) (*application.CartView, error)
	RemoveItem(ctx context.Context, sessionID, productID string) (*application.CartView, error)
	Clear(ctx context.Context, sessionID string) error
	Checkout(ctx context.Context, sessionID string, customer reservation.Customer, idempotencyKey string) (*reservation.Reservation, error)
}

// ReservationServiceInterface books and manages reservations.
type ReservationServiceInterface interface {
	Checkout(ctx context.Context, input application.CheckoutInput) (*reservation.Reservation, error)
	GetReservation(ctx context.Context, id string) (*reservation.Reservation, error)
	LookupByOrderCode(ctx context.Context, code, contact string) (*reservation.Reservation, error)
	ListReservations(ctx context.Context, filter reservation.ListFilter) ([]*reservation.Reservation, error)
	UpdateStatus(ctx context.Context, id, status string) (*reservation.Reservation, error)
	HandlePaymentNotification(ctx context.Context, n payment.Notification) (*reservation.Reservation, error)
}

// ReportServiceInterface produces admin summaries.
type ReportServiceInterface interface {
	Summary(ctx context.Context, from, to time.Time) (*report.Summary, error)
}
