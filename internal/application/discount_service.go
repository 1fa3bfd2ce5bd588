package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sanosuguru/go-gear-rental/internal/domain/discount"
)

// DiscountService validates codes for customers and manages them for admins.
type DiscountService struct {
	discountRepo discount.Repository
	now          func() time.Time
}

func NewDiscountService(dr discount.Repository) *DiscountService {
	return &DiscountService{discountRepo: dr, now: time.Now}
}

// Validate evaluates a code without redeeming it.
func (s *DiscountService) Validate(ctx context.Context, code string) (discount.Result, error) {
	normalized := discount.Normalize(code)
	if normalized == "" {
		return discount.Evaluate(code, nil, s.now()), nil
	}
	stored, err := s.discountRepo.GetByCode(ctx, normalized)
	if err != nil && !errors.Is(err, discount.ErrDiscountNotFound) {
		return discount.Result{}, fmt.Errorf("get discount code: %w", err)
	}
	return discount.Evaluate(code, stored, s.now()), nil
}

type DiscountInput struct {
	Code       string
	Percentage int
	MaxUses    *int
	ValidFrom  *time.Time
	ValidTo    *time.Time
	IsActive   *bool
}

func (s *DiscountService) CreateCode(ctx context.Context, input DiscountInput) (*discount.Code, error) {
	c := discount.NewCode(input.Code, input.Percentage, input.MaxUses, input.ValidFrom, input.ValidTo)
	if input.IsActive != nil {
		c.IsActive = *input.IsActive
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.discountRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *DiscountService) GetCode(ctx context.Context, id string) (*discount.Code, error) {
	return s.discountRepo.GetByID(ctx, id)
}

func (s *DiscountService) ListCodes(ctx context.Context) ([]*discount.Code, error) {
	return s.discountRepo.List(ctx)
}

// UpdateCode replaces the editable fields. The usage counter is kept.
func (s *DiscountService) UpdateCode(ctx context.Context, id string, input DiscountInput) (*discount.Code, error) {
	c, err := s.discountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Code = discount.Normalize(input.Code)
	c.Percentage = input.Percentage
	c.MaxUses = input.MaxUses
	c.ValidFrom = input.ValidFrom
	c.ValidTo = input.ValidTo
	if input.IsActive != nil {
		c.IsActive = *input.IsActive
	}
	c.UpdatedAt = s.now()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.discountRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *DiscountService) DeleteCode(ctx context.Context, id string) error {
	return s.discountRepo.Delete(ctx, id)
}
