package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-gear-rental/internal/application"
	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/discount"
	"github.com/sanosuguru/go-gear-rental/internal/domain/product"
	"github.com/sanosuguru/go-gear-rental/internal/domain/report"
	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
	"github.com/sanosuguru/go-gear-rental/internal/infrastructure/payment"
)

// MockCalendarService implements CalendarServiceInterface
type MockCalendarService struct {
	mock.Mock
}

func (m *MockCalendarService) WindowFor(start time.Time) (calendar.Window, error) {
	args := m.Called(start)
	return args.Get(0).(calendar.Window), args.Error(1)
}

func (m *MockCalendarService) RentalDays(from, to time.Time) (int, error) {
	args := m.Called(from, to)
	return args.Int(0), args.Error(1)
}

// MockProductService implements ProductServiceInterface
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) CreateProduct(ctx context.Context, input application.CreateProductInput) (*product.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, input application.UpdateProductInput) (*product.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) ListAvailability(ctx context.Context, filter product.ListFilter, start *time.Time) ([]application.ProductAvailability, error) {
	args := m.Called(ctx, filter, start)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]application.ProductAvailability), args.Error(1)
}

func (m *MockProductService) GetAvailability(ctx context.Context, id string, start *time.Time) (*application.ProductAvailability, error) {
	args := m.Called(ctx, id, start)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.ProductAvailability), args.Error(1)
}

// MockDiscountService implements DiscountServiceInterface
type MockDiscountService struct {
	mock.Mock
}

func (m *MockDiscountService) Validate(ctx context.Context, code string) (discount.Result, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(discount.Result), args.Error(1)
}

func (m *MockDiscountService) CreateCode(ctx context.Context, input application.DiscountInput) (*discount.Code, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discount.Code), args.Error(1)
}

func (m *MockDiscountService) GetCode(ctx context.Context, id string) (*discount.Code, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discount.Code), args.Error(1)
}

func (m *MockDiscountService) ListCodes(ctx context.Context) ([]*discount.Code, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*discount.Code), args.Error(1)
}

func (m *MockDiscountService) UpdateCode(ctx context.Context, id string, input application.DiscountInput) (*discount.Code, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discount.Code), args.Error(1)
}

func (m *MockDiscountService) DeleteCode(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockCartService implements CartServiceInterface
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, sessionID string) (*application.CartView, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.CartView), args.Error(1)
}

func (m *MockCartService) Replace(ctx context.Context, sessionID string, input application.ReplaceCartInput) (*application.CartView, error) {
	args := m.Called(ctx, sessionID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.CartView), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, sessionID, productID string, qty int) (*application.CartView, error) {
	args := m.Called(ctx, sessionID, productID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.CartView), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, sessionID, productID string) (*application.CartView, error) {
	args := m.Called(ctx, sessionID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.CartView), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockCartService) Checkout(ctx context.Context, sessionID string, customer reservation.Customer, idempotencyKey string) (*reservation.Reservation, error) {
	args := m.Called(ctx, sessionID, customer, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

// MockReservationService implements ReservationServiceInterface
type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) Checkout(ctx context.Context, input application.CheckoutInput) (*reservation.Reservation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) GetReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) LookupByOrderCode(ctx context.Context, code, contact string) (*reservation.Reservation, error) {
	args := m.Called(ctx, code, contact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) ListReservations(ctx context.Context, filter reservation.ListFilter) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) UpdateStatus(ctx context.Context, id, status string) (*reservation.Reservation, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) HandlePaymentNotification(ctx context.Context, n payment.Notification) (*reservation.Reservation, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

// MockReportService implements ReportServiceInterface
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Summary(ctx context.Context, from, to time.Time) (*report.Summary, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Summary), args.Error(1)
}
