package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-gear-rental/internal/domain/availability"
	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/product"
	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
	redisinfra "github.com/sanosuguru/go-gear-rental/internal/infrastructure/redis"
	"github.com/sanosuguru/go-gear-rental/internal/pkg/logger"
	"github.com/sanosuguru/go-gear-rental/internal/pkg/metrics"
)

const defaultAvailabilityCacheTTL = 30 * time.Second

// ProductAvailability is a catalog entry with its bookable quantity.
// Without a window Realtime is false and Remaining is the total stock.
type ProductAvailability struct {
	Product   *product.Product
	Window    *calendar.Window
	Remaining int
	Realtime  bool
}

// ProductService serves the catalog and its availability.
type ProductService struct {
	productRepo     product.Repository
	reservationRepo reservation.Repository
	calendar        *CalendarService
	cache           redisinfra.AvailabilityCacheInterface
	cacheTTL        time.Duration
	metrics         *metrics.Metrics
}

// NewProductService builds the catalog service. cache may be nil.
func NewProductService(pr product.Repository, rr reservation.Repository, cal *CalendarService, cache redisinfra.AvailabilityCacheInterface, cacheTTL time.Duration) *ProductService {
	if cacheTTL <= 0 {
		cacheTTL = defaultAvailabilityCacheTTL
	}
	return &ProductService{
		productRepo:     pr,
		reservationRepo: rr,
		calendar:        cal,
		cache:           cache,
		cacheTTL:        cacheTTL,
	}
}

func (s *ProductService) WithMetrics(m *metrics.Metrics) *ProductService {
	s.metrics = m
	return s
}

type CreateProductInput struct {
	Name         string
	Category     string
	Description  string
	ImageURL     string
	PricePerDay  int64
	PricePerTrip int64
	Stock        int
}

func (s *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) (*product.Product, error) {
	p := product.NewProduct(input.Name, input.Category, input.Description, input.PricePerDay, input.PricePerTrip, input.Stock)
	p.ImageURL = input.ImageURL
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

func (s *ProductService) ListProducts(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.productRepo.List(ctx, filter)
}

type UpdateProductInput struct {
	ID           string
	Name         string
	Category     string
	Description  string
	ImageURL     string
	PricePerDay  int64
	PricePerTrip int64
	Stock        int
	Version      int
}

// UpdateProduct applies admin edits. A non-zero Version must match the
// stored one.
func (s *ProductService) UpdateProduct(ctx context.Context, input UpdateProductInput) (*product.Product, error) {
	p, err := s.productRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if input.Version != 0 && input.Version != p.Version {
		return nil, product.ErrOptimisticLockConflict
	}
	updated := product.NewProduct(input.Name, input.Category, input.Description, input.PricePerDay, input.PricePerTrip, input.Stock)
	p.Name = updated.Name
	p.Category = updated.Category
	p.Description = updated.Description
	p.ImageURL = input.ImageURL
	p.PricePerDay = updated.PricePerDay
	p.PricePerTrip = updated.PricePerTrip
	p.Stock = updated.Stock
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.productRepo.Delete(ctx, id)
}

// ListAvailability lists the catalog. When start is set each product carries
// its remaining stock for the derived window.
func (s *ProductService) ListAvailability(ctx context.Context, filter product.ListFilter, start *time.Time) ([]ProductAvailability, error) {
	products, err := s.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.withAvailability(ctx, products, start)
}

// GetAvailability returns one product with its remaining stock.
func (s *ProductService) GetAvailability(ctx context.Context, id string, start *time.Time) (*ProductAvailability, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.withAvailability(ctx, []*product.Product{p}, start)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *ProductService) withAvailability(ctx context.Context, products []*product.Product, start *time.Time) ([]ProductAvailability, error) {
	out := make([]ProductAvailability, 0, len(products))
	if start == nil {
		for _, p := range products {
			out = append(out, ProductAvailability{Product: p, Remaining: p.Stock})
		}
		return out, nil
	}

	w, err := s.calendar.WindowFor(*start)
	if err != nil {
		return nil, err
	}
	consumed, err := s.consumed(ctx, w)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		out = append(out, ProductAvailability{
			Product:   p,
			Window:    &w,
			Remaining: availability.RemainingFromConsumed(p, consumed),
			Realtime:  true,
		})
	}
	return out, nil
}

// consumed reads booked units for w, through the cache when configured.
// Cache errors fall back to the ledger. A miss is refilled under the
// generation observed before the ledger read, never a later one.
func (s *ProductService) consumed(ctx context.Context, w calendar.Window) (map[string]int, error) {
	refill := false
	var gen int64
	if s.cache != nil {
		cached, g, err := s.cache.GetConsumed(ctx, w.Start)
		switch {
		case err == nil:
			s.metrics.RecordCache("hit")
			return cached, nil
		case errors.Is(err, redisinfra.ErrCacheMiss):
			s.metrics.RecordCache("miss")
			refill, gen = true, g
		default:
			logger.Warn("availability cache read failed", zap.Error(err))
			s.metrics.RecordCache("error")
		}
	}

	reservations, err := s.reservationRepo.ListOverlapping(ctx, nil, w, reservation.NonConsumingStatuses)
	if err != nil {
		return nil, fmt.Errorf("list overlapping reservations: %w", err)
	}
	consumed := availability.ConsumedByProduct(w, reservations)

	if refill {
		if err := s.cache.SetConsumed(ctx, gen, w.Start, consumed, s.cacheTTL); err != nil {
			logger.Warn("availability cache write failed", zap.Error(err))
		}
	}
	return consumed, nil
}
