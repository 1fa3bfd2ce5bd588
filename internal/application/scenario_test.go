package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-gear-rental/internal/domain/discount"
	"github.com/sanosuguru/go-gear-rental/internal/domain/pricing"
	"github.com/sanosuguru/go-gear-rental/internal/domain/product"
	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
)

type scenario struct {
	store        *memoryStore
	calendar     *CalendarService
	products     *ProductService
	reservations *ReservationService
	discounts    *DiscountService
}

func newScenario(products ...*product.Product) *scenario {
	store := newMemoryStore(products...)
	cal := NewCalendarService(wib)
	cal.now = func() time.Time { return fixedNow }

	pr := memoryProducts{store}
	rr := memoryReservations{store}
	dr := memoryDiscounts{store}
	ds := NewDiscountService(dr)
	ds.now = cal.now
	return &scenario{
		store:        store,
		calendar:     cal,
		products:     NewProductService(pr, rr, cal, nil, 0),
		reservations: NewReservationService(memoryTxManager{store}, rr, pr, dr, nil, nil, cal, ReservationOptions{}),
		discounts:    ds,
	}
}

func (s *scenario) remaining(t *testing.T, id string, start time.Time) int {
	t.Helper()
	pa, err := s.products.GetAvailability(context.Background(), id, &start)
	require.NoError(t, err)
	require.True(t, pa.Realtime)
	return pa.Remaining
}

func (s *scenario) book(id string, qty int, start time.Time) (*reservation.Reservation, error) {
	return s.reservations.Checkout(context.Background(), CheckoutInput{
		Customer:  customer(),
		StartDate: start,
		Items:     []CheckoutItem{{ProductID: id, Quantity: qty}},
	})
}

// Stock 5, a Friday run holding 3, then a Saturday customer who overlaps it.
func TestScenario_OverlappingRuns(t *testing.T) {
	s := newScenario(tent(5))
	saturday := friday.AddDate(0, 0, 1)
	nextFriday := friday.AddDate(0, 0, 7)
	ctx := context.Background()

	first, err := s.book("tent", 3, friday)
	require.NoError(t, err)
	assert.Equal(t, "RNT-1026-0001", first.OrderCode)

	assert.Equal(t, 2, s.remaining(t, "tent", saturday))
	assert.Equal(t, 5, s.remaining(t, "tent", nextFriday), "runs a week apart do not overlap")

	_, err = s.book("tent", 3, saturday)
	var ob *pricing.OverBookedError
	require.True(t, errors.As(err, &ob))
	assert.Equal(t, 3, ob.Requested)
	assert.Equal(t, 2, ob.Remaining)

	second, err := s.book("tent", 2, saturday)
	require.NoError(t, err)
	assert.Equal(t, "RNT-1026-0002", second.OrderCode)
	assert.Equal(t, 0, s.remaining(t, "tent", saturday))
	assert.Equal(t, 0, s.remaining(t, "tent", friday))

	_, err = s.reservations.UpdateStatus(ctx, first.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, 3, s.remaining(t, "tent", friday), "cancelled reservations release their stock")

	_, err = s.reservations.UpdateStatus(ctx, second.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, 5, s.remaining(t, "tent", saturday))
}

func TestScenario_CatalogWithoutWindowReportsTotalStock(t *testing.T) {
	s := newScenario(tent(5))
	_, err := s.book("tent", 4, friday)
	require.NoError(t, err)

	list, err := s.products.ListAvailability(context.Background(), product.ListFilter{}, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Realtime)
	assert.Equal(t, 5, list[0].Remaining)
	assert.Nil(t, list[0].Window)
}

func TestScenario_ConcurrentCheckoutsNeverOverbook(t *testing.T) {
	s := newScenario(tent(3))

	const workers = 10
	var wg sync.WaitGroup
	var booked, rejected int32
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.book("tent", 1, friday)
			switch {
			case err == nil:
				atomic.AddInt32(&booked, 1)
			case errors.Is(err, pricing.ErrOverBooked):
				atomic.AddInt32(&rejected, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), booked)
	assert.Equal(t, int32(workers-3), rejected)
	assert.Equal(t, 0, s.remaining(t, "tent", friday))
}

func TestScenario_DiscountUsageCap(t *testing.T) {
	s := newScenario(tent(10))
	ctx := context.Background()
	maxUses := 2
	_, err := s.discounts.CreateCode(ctx, DiscountInput{Code: "duaKali", Percentage: 25, MaxUses: &maxUses})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		r, err := s.reservations.Checkout(ctx, CheckoutInput{
			Customer:     customer(),
			StartDate:    friday,
			Items:        []CheckoutItem{{ProductID: "tent", Quantity: 1}},
			DiscountCode: "DUAKALI",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(75000), r.Total)
	}

	res, err := s.discounts.Validate(ctx, "duakali")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, discount.ReasonUsageLimit, res.Reason)

	_, err = s.reservations.Checkout(ctx, CheckoutInput{
		Customer:     customer(),
		StartDate:    friday,
		Items:        []CheckoutItem{{ProductID: "tent", Quantity: 1}},
		DiscountCode: "DUAKALI",
	})
	assert.ErrorIs(t, err, ErrInvalidDiscount)
}

func TestScenario_IdempotentReplay(t *testing.T) {
	s := newScenario(tent(5))
	ctx := context.Background()
	input := CheckoutInput{
		Customer:       customer(),
		StartDate:      friday,
		Items:          []CheckoutItem{{ProductID: "tent", Quantity: 2}},
		IdempotencyKey: "browser-tab-1",
	}

	first, err := s.reservations.Checkout(ctx, input)
	require.NoError(t, err)
	again, err := s.reservations.Checkout(ctx, input)
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 3, s.remaining(t, "tent", friday))
	assert.Len(t, s.store.reservations, 1, fmt.Sprintf("%d reservations stored", len(s.store.reservations)))
}
