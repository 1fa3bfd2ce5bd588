package application

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sanosuguru/go-gear-rental/internal/domain/availability"
	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/discount"
	"github.com/sanosuguru/go-gear-rental/internal/domain/product"
	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
	"github.com/sanosuguru/go-gear-rental/internal/domain/transaction"
)

// memoryStore is an in-memory ledger. A transaction holds the store mutex
// from Begin until Commit or Rollback, which serializes checkouts the way the
// product row locks do in Postgres.
type memoryStore struct {
	mu           sync.Mutex
	products     map[string]*product.Product
	reservations []*reservation.Reservation
	codes        map[string]*discount.Code
	sequences    map[string]int
	nextID       int
}

func newMemoryStore(products ...*product.Product) *memoryStore {
	s := &memoryStore{
		products:  map[string]*product.Product{},
		codes:     map[string]*discount.Code{},
		sequences: map[string]int{},
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

type memoryTx struct {
	store *memoryStore
	done  bool
	adds  []*reservation.Reservation
	uses  []string
}

func (t *memoryTx) Commit() error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}
	t.store.reservations = append(t.store.reservations, t.adds...)
	for _, id := range t.uses {
		for _, c := range t.store.codes {
			if c.ID == id {
				c.UsedCount++
			}
		}
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func (t *memoryTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

type memoryTxManager struct{ store *memoryStore }

func (m memoryTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	m.store.mu.Lock()
	return &memoryTx{store: m.store}, nil
}

type memoryProducts struct{ store *memoryStore }

func (r memoryProducts) Create(ctx context.Context, p *product.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.products[p.ID] = p
	return nil
}

func (r memoryProducts) GetByID(ctx context.Context, id string) (*product.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return p, nil
}

func (r memoryProducts) GetByIDs(ctx context.Context, ids []string) ([]*product.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.lookup(ids), nil
}

func (r memoryProducts) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*product.Product
	for _, p := range r.store.products {
		if filter.Category == "" || p.Category == filter.Category {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memoryProducts) Update(ctx context.Context, p *product.Product) error { return nil }

func (r memoryProducts) Delete(ctx context.Context, id string) error { return nil }

func (r memoryProducts) LockForUpdate(ctx context.Context, tx transaction.Tx, ids []string) ([]*product.Product, error) {
	return r.store.lookup(ids), nil
}

func (s *memoryStore) lookup(ids []string) []*product.Product {
	var out []*product.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

type memoryReservations struct{ store *memoryStore }

func (r memoryReservations) Create(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	mtx := tx.(*memoryTx)
	r.store.nextID++
	res.ID = fmt.Sprintf("res-%d", r.store.nextID)
	mtx.adds = append(mtx.adds, res)
	return nil
}

func (r memoryReservations) find(match func(*reservation.Reservation) bool) (*reservation.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, res := range r.store.reservations {
		if match(res) {
			return res, nil
		}
	}
	return nil, reservation.ErrReservationNotFound
}

func (r memoryReservations) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	return r.find(func(res *reservation.Reservation) bool { return res.ID == id })
}

func (r memoryReservations) GetByOrderCode(ctx context.Context, code string) (*reservation.Reservation, error) {
	return r.find(func(res *reservation.Reservation) bool { return res.OrderCode == code })
}

func (r memoryReservations) GetByIdempotencyKey(ctx context.Context, key string) (*reservation.Reservation, error) {
	return r.find(func(res *reservation.Reservation) bool { return res.IdempotencyKey != "" && res.IdempotencyKey == key })
}

func (r memoryReservations) List(ctx context.Context, filter reservation.ListFilter) ([]*reservation.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]*reservation.Reservation(nil), r.store.reservations...), nil
}

func (r memoryReservations) ListOverlapping(ctx context.Context, tx transaction.Tx, w calendar.Window, exclude []reservation.Status) ([]*reservation.Reservation, error) {
	if tx == nil {
		r.store.mu.Lock()
		defer r.store.mu.Unlock()
	}
	var out []*reservation.Reservation
	for _, res := range r.store.reservations {
		if availability.Overlaps(res.Window, w) && !containsStatus(exclude, res.Status) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r memoryReservations) Update(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	return nil
}

func (r memoryReservations) UpdateFromStatus(ctx context.Context, tx transaction.Tx, res *reservation.Reservation, expected reservation.Status) error {
	return nil
}

func (r memoryReservations) NextOrderSequence(ctx context.Context, tx transaction.Tx, period string) (int, error) {
	r.store.sequences[period]++
	return r.store.sequences[period], nil
}

func (r memoryReservations) GetExpiredPending(ctx context.Context, expireAfter time.Duration) ([]*reservation.Reservation, error) {
	return nil, nil
}

func (r memoryReservations) ListDueForTransition(ctx context.Context, status reservation.Status, field reservation.DueField, day time.Time) ([]*reservation.Reservation, error) {
	return nil, nil
}

type memoryDiscounts struct{ store *memoryStore }

func (r memoryDiscounts) Create(ctx context.Context, c *discount.Code) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if c.ID == "" {
		c.ID = "code-" + c.Code
	}
	r.store.codes[c.Code] = c
	return nil
}

func (r memoryDiscounts) GetByID(ctx context.Context, id string) (*discount.Code, error) {
	return nil, discount.ErrDiscountNotFound
}

func (r memoryDiscounts) GetByCode(ctx context.Context, code string) (*discount.Code, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.get(code)
}

func (r memoryDiscounts) GetByCodeForUpdate(ctx context.Context, tx transaction.Tx, code string) (*discount.Code, error) {
	return r.get(code)
}

func (r memoryDiscounts) get(code string) (*discount.Code, error) {
	c, ok := r.store.codes[discount.Normalize(code)]
	if !ok {
		return nil, discount.ErrDiscountNotFound
	}
	cp := *c
	return &cp, nil
}

func (r memoryDiscounts) List(ctx context.Context) ([]*discount.Code, error) { return nil, nil }

func (r memoryDiscounts) Update(ctx context.Context, c *discount.Code) error { return nil }

func (r memoryDiscounts) Delete(ctx context.Context, id string) error { return nil }

func (r memoryDiscounts) IncrementUsage(ctx context.Context, tx transaction.Tx, id string) error {
	mtx := tx.(*memoryTx)
	for _, c := range r.store.codes {
		if c.ID == id && c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
			return discount.ErrCodeNotRedeemable
		}
	}
	mtx.uses = append(mtx.uses, id)
	return nil
}

func containsStatus(list []reservation.Status, s reservation.Status) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
