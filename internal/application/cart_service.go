package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/cart"
	"github.com/sanosuguru/go-gear-rental/internal/domain/pricing"
	"github.com/sanosuguru/go-gear-rental/internal/domain/product"
	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
	"github.com/sanosuguru/go-gear-rental/internal/pkg/logger"
)

const defaultCartTTL = 7 * 24 * time.Hour

// CartLine is a cart entry priced with the current catalog.
type CartLine struct {
	ProductID    string
	ProductName  string
	PricePerTrip int64
	Quantity     int
	LineTotal    int64
}

// CartView is the cart as shown to the customer. Prices are indicative;
// checkout re-prices under lock.
type CartView struct {
	Cart     *cart.Cart
	Window   *calendar.Window
	Lines    []CartLine
	Subtotal int64
}

// CartService loads and saves the session cart and checks it out.
type CartService struct {
	store        cart.Store
	productRepo  product.Repository
	reservations *ReservationService
	calendar     *CalendarService
	ttl          time.Duration
}

// NewCartService builds the cart service. A nil store disables carts.
func NewCartService(store cart.Store, pr product.Repository, rs *ReservationService, cal *CalendarService, ttl time.Duration) *CartService {
	if ttl <= 0 {
		ttl = defaultCartTTL
	}
	return &CartService{store: store, productRepo: pr, reservations: rs, calendar: cal, ttl: ttl}
}

// Get returns the session cart, empty when none was saved.
func (s *CartService) Get(ctx context.Context, sessionID string) (*CartView, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

type ReplaceCartInput struct {
	StartDate    *time.Time
	Items        []cart.Item
	DiscountCode string
}

// Replace overwrites the whole cart.
func (s *CartService) Replace(ctx context.Context, sessionID string, input ReplaceCartInput) (*CartView, error) {
	if s.store == nil {
		return nil, ErrCartUnavailable
	}
	c, err := cart.New(sessionID)
	if err != nil {
		return nil, err
	}
	if input.StartDate != nil {
		if err := c.SetStartDate(*input.StartDate, s.calendar.Today()); err != nil {
			return nil, err
		}
	}
	for _, it := range input.Items {
		if err := c.Add(it.ProductID, it.Quantity); err != nil {
			return nil, err
		}
	}
	if err := s.ensureProducts(ctx, c.ProductIDs()); err != nil {
		return nil, err
	}
	c.ApplyDiscountCode(input.DiscountCode)
	return s.save(ctx, c)
}

// AddItem adds qty units of a product.
func (s *CartService) AddItem(ctx context.Context, sessionID, productID string, qty int) (*CartView, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := c.Add(productID, qty); err != nil {
		return nil, err
	}
	if err := s.ensureProducts(ctx, []string{productID}); err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

// RemoveItem drops a product line.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID string) (*CartView, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := c.Remove(productID); err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

// Clear deletes the session cart.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	if s.store == nil {
		return ErrCartUnavailable
	}
	if _, err := cart.New(sessionID); err != nil {
		return err
	}
	return s.store.Delete(ctx, sessionID)
}

// Checkout books the session cart and clears it on success.
func (s *CartService) Checkout(ctx context.Context, sessionID string, customer reservation.Customer, idempotencyKey string) (*reservation.Reservation, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := c.ReadyForCheckout(); err != nil {
		return nil, err
	}
	input := CheckoutInput{
		Customer:       customer,
		StartDate:      *c.StartDate,
		DiscountCode:   c.DiscountCode,
		IdempotencyKey: idempotencyKey,
	}
	for _, it := range c.Items {
		input.Items = append(input.Items, CheckoutItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	r, err := s.reservations.Checkout(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, c.SessionID); err != nil {
		logger.Warn("clear cart after checkout", zap.String("session_id", c.SessionID), zap.Error(err))
	}
	return r, nil
}

func (s *CartService) load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	if s.store == nil {
		return nil, ErrCartUnavailable
	}
	empty, err := cart.New(sessionID)
	if err != nil {
		return nil, err
	}
	c, err := s.store.Get(ctx, empty.SessionID)
	if errors.Is(err, cart.ErrCartNotFound) {
		return empty, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CartService) save(ctx context.Context, c *cart.Cart) (*CartView, error) {
	if err := s.store.Save(ctx, c, s.ttl); err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

func (s *CartService) ensureProducts(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("get products: %w", err)
	}
	found := make(map[string]bool, len(products))
	for _, p := range products {
		found[p.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return fmt.Errorf("%w: %s", pricing.ErrUnknownProduct, id)
		}
	}
	return nil
}

func (s *CartService) view(ctx context.Context, c *cart.Cart) (*CartView, error) {
	v := &CartView{Cart: c, Lines: []CartLine{}}
	if c.StartDate != nil {
		w, err := c.Window()
		if err == nil {
			v.Window = &w
		}
	}
	if c.IsEmpty() {
		return v, nil
	}
	products, err := s.productRepo.GetByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	byID := make(map[string]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, it := range c.Items {
		line := CartLine{ProductID: it.ProductID, Quantity: it.Quantity}
		if p, ok := byID[it.ProductID]; ok {
			line.ProductName = p.Name
			line.PricePerTrip = p.PricePerTrip
			line.LineTotal = p.PricePerTrip * int64(it.Quantity)
		}
		v.Lines = append(v.Lines, line)
		v.Subtotal += line.LineTotal
	}
	return v, nil
}
