package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-gear-rental/internal/api"
	"github.com/sanosuguru/go-gear-rental/internal/api/middleware"
	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/product"
	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
)

var (
	friday    = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	createdAt = time.Date(2026, 10, 14, 3, 0, 0, 0, time.UTC)
)

type testServer struct {
	e            *echo.Echo
	calendar     *MockCalendarService
	products     *MockProductService
	discounts    *MockDiscountService
	carts        *MockCartService
	reservations *MockReservationService
	reports      *MockReportService
}

func newTestServer(checks ...HealthCheck) *testServer {
	s := &testServer{
		e:            NewTestEcho(),
		calendar:     new(MockCalendarService),
		products:     new(MockProductService),
		discounts:    new(MockDiscountService),
		carts:        new(MockCartService),
		reservations: new(MockReservationService),
		reports:      new(MockReportService),
	}
	RegisterRoutes(s.e, Handlers{
		Health:      NewHealthHandler(checks...),
		Calendar:    NewCalendarHandler(s.calendar),
		Product:     NewProductHandler(s.products),
		Discount:    NewDiscountHandler(s.discounts),
		Cart:        NewCartHandler(s.carts),
		Reservation: NewReservationHandler(s.reservations),
		Report:      NewReportHandler(s.reports),
	}, middleware.AdminAuth("admin", "secret"))
	return s
}

func (s *testServer) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) admin(method, path string, body interface{}) *httptest.ResponseRecorder {
	auth := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:secret"))
	return s.do(method, path, body, map[string]string{echo.HeaderAuthorization: auth})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var body api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func tentProduct() *product.Product {
	return &product.Product{
		ID: "tent", Name: "Dome Tent 4P", Category: "tent",
		PricePerDay: 30000, PricePerTrip: 100000, Stock: 5,
		CreatedAt: createdAt, UpdatedAt: createdAt, Version: 1,
	}
}

func sampleReservation() *reservation.Reservation {
	return &reservation.Reservation{
		ID:        "res-1",
		OrderCode: "RNT-1026-0001",
		Customer:  reservation.Customer{Name: "Budi", Phone: "+628123456789"},
		Window:    calendar.DeriveWindow(friday),
		Items: []reservation.Item{
			{ID: "item-1", ProductID: "tent", ProductName: "Dome Tent 4P", Quantity: 2, PricePerRun: 100000},
		},
		Status:    reservation.StatusPending,
		Subtotal:  200000,
		Total:     200000,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}
